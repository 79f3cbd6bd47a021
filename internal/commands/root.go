// Package commands provides CLI commands for companion.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	apiURLFlag   string
	dataDirFlag  string
	logLevelFlag string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd creates the base command. Running it without a subcommand starts the chat.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "companion",
		Short: "A friendly conversational companion for the terminal",
		Long: `companion is a conversational companion that chats with you, notices how you
are feeling and can speak its replies aloud. It talks to a companion service
that provides the replies, the sentiment of your messages and topic ideas.

Examples:
  companion                          Start the companion
  companion chat --plain             Chat without the full-screen interface
  companion say "I baked bread"      Send a single message
  companion topics                   Show conversation starters
  companion settings set fontSize large
  companion voices                   List the voices available for speech`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "companion %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd, deps, false)
		},
	}

	cmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Companion service base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory for settings, transcripts and logs (default ~/.companion)")
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewSayCmd(deps))
	cmd.AddCommand(NewTopicsCmd(deps))
	cmd.AddCommand(NewSettingsCmd(deps))
	cmd.AddCommand(NewVoicesCmd(deps))
	cmd.AddCommand(NewResetCmd(deps))
	cmd.AddCommand(NewTranscriptsCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}
