package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/companion/internal/render"
	"github.com/diogo/companion/internal/tui"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a conversation with the companion",
		Long: `Start a conversation with the companion.

The first run walks you through a short introduction and asks for your name.
After that the companion greets you and remembers the conversation until you
leave. Type 'exit', 'quit', or press Ctrl+C to end the session.

The full-screen interface is used when stdout is a terminal. Use --plain for a
simple line-based prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Use a line-based prompt instead of the full-screen interface")

	return cmd
}

func runChat(cmd *cobra.Command, deps *Dependencies, plain bool) error {
	if deps == nil {
		deps = NewDependencies()
	}

	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Machine.Start(); err != nil {
		app.Logger.Warn().Err(err).Msg("starting with default settings")
	}

	if plain || deps.TUI == nil || !terminalFor(deps) {
		reader := newLinerReader(app.DataDir)
		defer reader.Close()
		return runPlain(cmd.Context(), app, reader, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	return deps.TUI.Run(tui.Options{
		Context:         cmd.Context(),
		Machine:         app.Machine,
		Topics:          app.Topics,
		Recognizer:      app.Recognizer,
		Synthesizer:     app.Synthesizer,
		Animator:        app.Animator,
		Transcripts:     app.Transcripts,
		Markdown:        render.OptionsFromConfig(app.Config.Markdown),
		Theme:           app.Config.TUITheme,
		CopyToClipboard: app.Config.CopyToClipboard,
		Clipboard:       clipboardFor(deps),
		Logger:          app.Logger,
	})
}
