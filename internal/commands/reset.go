package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCmd creates the reset command
func NewResetCmd(deps *Dependencies) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget your name and settings",
		Long: `Remove the stored settings and the first-visit marker. The next conversation
starts with the introduction again. Saved transcripts are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this removes your name and settings; run again with --yes to confirm")
			}
			return runReset(cmd, deps)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")

	return cmd
}

func runReset(cmd *cobra.Command, deps *Dependencies) error {
	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Settings.Reset(); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	app.Logger.Info().Msg("settings reset")

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Settings removed. The introduction will run next time."))
	return nil
}
