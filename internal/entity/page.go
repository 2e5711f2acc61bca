package entity

// PageSocialLinks stores the first profile link found per network on a page.
type PageSocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

// CompanyInfo describes the organisation behind a scraped page.
type CompanyInfo struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
}

// PagePerson is a named individual found on a scraped page.
type PagePerson struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// ExtractedPageData is everything mined from a single URL. The zero value is
// the result for a page that could not be fetched or parsed.
type ExtractedPageData struct {
	Emails      []string        `json:"emails"`
	Phones      []string        `json:"phones"`
	SocialLinks PageSocialLinks `json:"social_links"`
	CompanyInfo CompanyInfo     `json:"company_info"`
	People      []PagePerson    `json:"people"`
}

// Empty reports whether nothing was extracted.
func (d ExtractedPageData) Empty() bool {
	return len(d.Emails) == 0 &&
		len(d.Phones) == 0 &&
		len(d.People) == 0 &&
		d.SocialLinks == (PageSocialLinks{}) &&
		d.CompanyInfo == (CompanyInfo{})
}
