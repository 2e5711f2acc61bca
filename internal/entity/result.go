package entity

// PipelineResult is the outcome of one provider pipeline invocation: the
// contacts it produced and the provenance trail explaining how.
type PipelineResult struct {
	Contacts []Contact `json:"contacts"`
	Source   string    `json:"source"`
	APIUsed  bool      `json:"api_used"`
	Logs     []string  `json:"logs"`
	Total    int       `json:"total"`
}

// DeepSearchResult combines every provider's output into one ranked list.
type DeepSearchResult struct {
	Contacts           []Contact                 `json:"contacts"`
	PerProviderResults map[string]PipelineResult `json:"per_provider_results"`
	Logs               []string                  `json:"logs"`
	Total              int                       `json:"total"`
	APIsUsed           []string                  `json:"apis_used"`
	APIsUnavailable    []string                  `json:"apis_unavailable"`
}
