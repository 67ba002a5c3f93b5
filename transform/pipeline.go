package transform

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/jrsteele09/chatcraft-server/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Pipeline tries each registered transformer in order and falls back to a
// plain fetch.
type Pipeline struct {
	transformers []Transformer
	fallback     Transformer
	metrics      metrics.Recorder
}

type PipelineOption func(*Pipeline)

// WithMetrics records which transformer served each request.
func WithMetrics(m metrics.Recorder) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// NewPipeline builds a pipeline. Order of transformers is the order they
// are consulted.
func NewPipeline(fallback Transformer, transformers []Transformer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		transformers: append([]Transformer(nil), transformers...),
		fallback:     fallback,
		metrics:      metrics.Nop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch resolves u. A transformer that claims u but fails is logged and
// skipped; only a failure of the fallback fetch is returned.
func (p *Pipeline) Fetch(ctx context.Context, u *url.URL) (*http.Response, error) {
	logger := zerolog.Ctx(ctx)

	for _, t := range p.transformers {
		if !t.ShouldTransform(u) {
			continue
		}

		resp, err := t.Process(ctx, u)
		if err != nil {
			p.metrics.RecordTransformerFailure(t.Name())
			logger.Warn().Err(err).
				Str("transformer", t.Name()).
				Str("url", u.Redacted()).
				Msg("Transformer failed, trying next")
			continue
		}

		p.metrics.RecordTransformerSelected(t.Name())
		logger.Debug().Str("transformer", t.Name()).Str("url", u.Redacted()).Msg("Transformed")
		return resp, nil
	}

	resp, err := p.fallback.Process(ctx, u)
	if err != nil {
		p.metrics.RecordTransformerFailure(p.fallback.Name())
		return nil, errors.Wrapf(apperrors.ErrUpstream, "%v", err)
	}
	p.metrics.RecordTransformerSelected(p.fallback.Name())
	return resp, nil
}

// FetchData parses rawURL and resolves it.
func (p *Pipeline) FetchData(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return p.Fetch(ctx, u)
}
