// Package topics supplies conversation starters, falling back to a built-in list.
package topics

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/diogo/companion/internal/models"
)

// Source fetches suggestions from the service
type Source interface {
	GetTopicSuggestions(ctx context.Context) ([]string, error)
}

// Provider loads suggestions. Failures never reach the caller.
type Provider struct {
	source Source
	logger zerolog.Logger
}

// NewProvider creates a provider. source may be nil to always use the built-in list.
func NewProvider(source Source, logger zerolog.Logger) *Provider {
	return &Provider{
		source: source,
		logger: logger.With().Str("component", "topics").Logger(),
	}
}

// Load returns the service's suggestions, or the built-in starters when the request
// fails or returns nothing
func (p *Provider) Load(ctx context.Context) []string {
	if p.source == nil {
		return models.FallbackTopics()
	}

	topics, err := p.source.GetTopicSuggestions(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to fetch topic suggestions, using defaults")
		return models.FallbackTopics()
	}
	if len(topics) == 0 {
		p.logger.Debug().Msg("service returned no topics, using defaults")
		return models.FallbackTopics()
	}
	return topics
}

// Visible reports whether suggestions are offered for a log of logLen messages
func Visible(logLen int) bool {
	return logLen < models.SuggestionLimit
}
