package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/companion/internal/conversation"
	"github.com/diogo/companion/internal/render"
	"github.com/diogo/companion/internal/speech"
)

type sayOptions struct {
	raw    bool
	copy   bool
	speak  bool
	output string
}

// NewSayCmd creates the say command
func NewSayCmd(deps *Dependencies) *cobra.Command {
	var opts sayOptions

	cmd := &cobra.Command{
		Use:   "say [message]",
		Short: "Send a single message and print the reply",
		Long: `Send a single message to the companion and print its reply together with
the mood it read from your message.

The message can be given as arguments or piped on stdin:
  companion say "I went for a walk today"
  echo "I miss my garden" | companion say

When stdout is not a terminal only the reply text is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				message = string(data)
			}
			if !opts.raw && !terminalFor(deps) {
				opts.raw = true
			}
			return runSay(cmd, deps, message, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.raw, "raw", "r", false, "Print only the reply text")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVarP(&opts.speak, "speak", "s", false, "Read the reply aloud")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to a file")

	return cmd
}

func runSay(cmd *cobra.Command, deps *Dependencies, message string, opts sayOptions) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("message cannot be empty")
	}

	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	settings, err := app.Settings.Load()
	if err != nil {
		app.Logger.Warn().Err(err).Msg("using default settings")
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var spin *spinner
	if !opts.raw {
		spin = newSpinner(errOut, settings.CompanionName+" is thinking")
		spin.start()
	}

	startTime := time.Now()
	sentiment, reply, err := conversation.Exchange(ctx, app.Client, message, nil)
	if err != nil {
		if !opts.raw {
			spin.stopWithError()
			fmt.Fprintln(errOut, formatErrorMessage(err, "Request failed"))
		}
		app.Logger.Warn().Err(err).Msg("say failed")
		return fmt.Errorf("request failed: %w", err)
	}
	if !opts.raw {
		spin.stopWithSuccess("Done")
	}
	app.Logger.Debug().
		Str("sentiment", string(sentiment)).
		Dur("elapsed", time.Since(startTime)).
		Msg("say reply received")

	if opts.copy {
		if err := clipboardFor(deps)(reply); err != nil {
			fmt.Fprintln(errOut, warningStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if !opts.raw {
			fmt.Fprintln(errOut, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.raw {
			fmt.Fprintln(errOut, successStyle.Render(fmt.Sprintf("✓ Reply saved to %s", opts.output)))
		}
	}

	if opts.raw {
		fmt.Fprintln(out, reply)
	} else {
		bubbleWidth, contentWidth := bubbleWidths()
		renderOpts := render.OptionsFromConfig(app.Config.Markdown).WithWidth(contentWidth)
		renderOpts = renderOpts.WithStyle(render.MarkdownStyleFor(renderOpts.Style, settings.HighContrast))
		rendered := strings.TrimRight(render.MarkdownOrPlain(reply, renderOpts), "\n")

		fmt.Fprintln(out, sentimentLine(sentiment))
		fmt.Fprintln(out, botLabelStyle.Render("✦ "+settings.CompanionName))
		fmt.Fprintln(out, botBubbleStyle.Width(bubbleWidth).Render(rendered))
	}

	if opts.speak {
		if err := speakAndWait(ctx, app.Synthesizer, reply); err != nil {
			fmt.Fprintln(errOut, formatErrorMessage(err, "Could not speak the reply"))
		}
	}

	return nil
}

// speakAndWait reads text aloud and blocks until the utterance ends or ctx is done
func speakAndWait(ctx context.Context, s *speech.Synthesizer, text string) error {
	changed := make(chan struct{}, 1)
	s.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer s.OnChange(nil)

	if err := s.Speak(text); err != nil {
		return err
	}
	for s.Speaking() {
		select {
		case <-ctx.Done():
			s.Cancel()
			return ctx.Err()
		case <-changed:
		}
	}
	return s.Err()
}
