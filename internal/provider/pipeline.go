// Package provider implements the per-provider discovery pipelines. Every
// provider shares one flow: call the native API when a credential is present,
// otherwise (or when that call fails) approximate the provider's data with a
// fallback built from web search, page extraction and platform search.
package provider

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/contact-discovery/internal/entity"
)

// Pipeline is the contract shared by all providers. Search never fails; all
// failures surface as Logs and a fallback outcome.
type Pipeline interface {
	Name() string
	Search(ctx context.Context, query, countryCode string) entity.PipelineResult
}

// Native is a provider's own API path: shape the request, call, map the
// response into contacts.
type Native[Req, Resp any] struct {
	Shape func(query, countryCode string) Req
	Call  func(ctx context.Context, req Req) (Resp, error)
	Map   func(resp Resp) []entity.Contact
}

// Fallback approximates a provider when its native path is unavailable.
type Fallback interface {
	Run(ctx context.Context, query, countryCode string, trace *Trace) []entity.Contact
}

type pipeline[Req, Resp any] struct {
	name      string
	available bool
	native    Native[Req, Resp]
	fallback  Fallback
	logger    *zap.Logger
}

// New assembles a pipeline. available reports whether the provider's
// credential is configured; when false the native path is never attempted.
func New[Req, Resp any](name string, available bool, native Native[Req, Resp], fallback Fallback, logger *zap.Logger) Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pipeline[Req, Resp]{
		name:      name,
		available: available,
		native:    native,
		fallback:  fallback,
		logger:    logger.With(zap.String("provider", name)),
	}
}

func (p *pipeline[Req, Resp]) Name() string { return p.name }

func (p *pipeline[Req, Resp]) Search(ctx context.Context, query, countryCode string) (result entity.PipelineResult) {
	trace := NewTrace(p.name, p.logger)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panicked", zap.Any("panic", r))
			trace.Addf("pipeline failed unexpectedly: %v", r)
			result = emptyResult(p.name, trace)
		}
	}()

	if p.available && p.native.Call != nil {
		trace.Addf("credential found, calling %s API", p.name)
		contacts, err := p.callNative(ctx, query, countryCode)
		switch {
		case err != nil:
			trace.Addf("%s API failed: %v; switching to fallback", p.name, err)
		case len(contacts) == 0:
			trace.Addf("%s API returned no contacts; switching to fallback", p.name)
		default:
			trace.Addf("%s API returned %d contacts", p.name, len(contacts))
			return entity.PipelineResult{
				Contacts: contacts,
				Source:   p.name,
				APIUsed:  true,
				Logs:     trace.Lines(),
				Total:    len(contacts),
			}
		}
	} else {
		trace.Addf("no %s credential configured, using fallback", p.name)
	}

	var contacts []entity.Contact
	if p.fallback != nil {
		contacts = validContacts(p.fallback.Run(ctx, query, countryCode, trace))
	}
	trace.Addf("fallback produced %d contacts", len(contacts))
	if contacts == nil {
		contacts = []entity.Contact{}
	}
	return entity.PipelineResult{
		Contacts: contacts,
		Source:   p.name,
		APIUsed:  false,
		Logs:     trace.Lines(),
		Total:    len(contacts),
	}
}

func (p *pipeline[Req, Resp]) callNative(ctx context.Context, query, countryCode string) (contacts []entity.Contact, err error) {
	defer func() {
		if r := recover(); r != nil {
			contacts, err = nil, eris.Errorf("native call panicked: %v", r)
		}
	}()

	var req Req
	if p.native.Shape != nil {
		req = p.native.Shape(query, countryCode)
	}
	resp, err := p.native.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if p.native.Map == nil {
		return nil, eris.New("no response mapping configured")
	}
	return validContacts(p.native.Map(resp)), nil
}

func emptyResult(name string, trace *Trace) entity.PipelineResult {
	return entity.PipelineResult{
		Contacts: []entity.Contact{},
		Source:   name,
		Logs:     trace.Lines(),
	}
}

// validContacts drops contacts whose names are too short to be merged.
func validContacts(contacts []entity.Contact) []entity.Contact {
	out := contacts[:0:0]
	for _, c := range contacts {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}
