package api

import (
	"context"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/companion/internal/errors"
	"github.com/diogo/companion/internal/models"
)

// GetTopicSuggestions fetches conversation starters. Callers supply their own fallback.
func (c *Client) GetTopicSuggestions(ctx context.Context) ([]string, error) {
	body, status, err := c.do(ctx, http.MethodGet, models.EndpointTopics, nil)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "topics")
	if !gjson.ValidBytes(body) || !result.IsArray() {
		return nil, apierrors.NewServiceError(status, models.EndpointTopics, "topics field missing")
	}

	var topics []string
	for _, item := range result.Array() {
		if topic := strings.TrimSpace(item.String()); topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}
