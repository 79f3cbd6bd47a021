package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewTopicsCmd creates the topics command
func NewTopicsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Show conversation starters",
		Long: `Ask the companion service for a few conversation starters. A built-in list
is shown when the service cannot be reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(cmd, deps)
		},
	}
}

func runTopics(cmd *cobra.Command, deps *Dependencies) error {
	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	topics := app.Topics.Load(ctx)
	app.Logger.Debug().Int("count", len(topics)).Dur("elapsed", time.Since(start)).Msg("topics loaded")

	out := cmd.OutOrStdout()
	for i, topic := range topics {
		fmt.Fprintf(out, "%d. %s\n", i+1, topic)
	}
	return nil
}
