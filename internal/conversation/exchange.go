package conversation

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diogo/companion/internal/api"
	apierrors "github.com/diogo/companion/internal/errors"
	"github.com/diogo/companion/internal/models"
)

// Exchange asks for the sentiment of text and the reply to it at the same time. A reply
// that is empty or whitespace is reported as a service error.
func Exchange(ctx context.Context, client api.ServiceClient, text string, history []models.Message) (models.Sentiment, string, error) {
	var sentiment models.Sentiment
	var reply string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sentiment, err = client.GetSentiment(gctx, text)
		return err
	})
	g.Go(func() error {
		var err error
		reply, err = client.GetChatResponse(gctx, text, history)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", "", apierrors.NewServiceError(0, models.EndpointChat, "empty reply")
	}
	return sentiment, reply, nil
}
