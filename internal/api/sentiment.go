package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/companion/internal/errors"
	"github.com/diogo/companion/internal/models"
)

type sentimentRequest struct {
	Message string `json:"message"`
}

// GetSentiment classifies a message
func (c *Client) GetSentiment(ctx context.Context, message string) (models.Sentiment, error) {
	body, status, err := c.do(ctx, http.MethodPost, models.EndpointSentiment, sentimentRequest{Message: message})
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", apierrors.NewServiceError(status, models.EndpointSentiment, "invalid JSON")
	}

	sentiment, err := models.ParseSentiment(gjson.GetBytes(body, "sentiment").String())
	if err != nil {
		return "", apierrors.NewServiceError(status, models.EndpointSentiment, err.Error())
	}
	return sentiment, nil
}
