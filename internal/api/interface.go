package api

import (
	"context"

	"github.com/diogo/companion/internal/models"
)

// ServiceClient defines the remote operations the rest of the application needs
type ServiceClient interface {
	GetChatResponse(ctx context.Context, message string, history []models.Message) (string, error)
	GetSentiment(ctx context.Context, message string) (models.Sentiment, error)
	GetTopicSuggestions(ctx context.Context) ([]string, error)
}

// Ensure Client implements ServiceClient
var _ ServiceClient = (*Client)(nil)
