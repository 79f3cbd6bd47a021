package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/companion/internal/errors"
	"github.com/diogo/companion/internal/models"
)

type chatRequest struct {
	Message             string                `json:"message"`
	ConversationHistory []models.HistoryEntry `json:"conversation_history"`
}

// GetChatResponse asks the service for the companion's reply. history is the message
// log before message; blank entries are dropped.
func (c *Client) GetChatResponse(ctx context.Context, message string, history []models.Message) (string, error) {
	payload := chatRequest{
		Message:             message,
		ConversationHistory: models.BuildHistory(history),
	}

	body, status, err := c.do(ctx, http.MethodPost, models.EndpointChat, payload)
	if err != nil {
		return "", err
	}

	result := gjson.GetBytes(body, "response")
	if !gjson.ValidBytes(body) || !result.Exists() || result.Type != gjson.String {
		return "", apierrors.NewServiceError(status, models.EndpointChat, "response field missing")
	}
	return result.String(), nil
}
