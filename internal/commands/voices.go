package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewVoicesCmd creates the voices command
func NewVoicesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the voices available for speech",
		Long: `List the voices offered by the speech engine and mark the one the companion
will use. The choice follows speech.voice_markers in config.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoices(cmd, deps)
		},
	}
}

func runVoices(cmd *cobra.Command, deps *Dependencies) error {
	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	if !app.Synthesizer.Supported() {
		fmt.Fprintln(out, "Speech is not available on this system.")
		fmt.Fprintln(out, dimStyle.Render("Install espeak-ng or set speech.synthesis_command in config.json"))
		return nil
	}

	voices := app.Synthesizer.Voices()
	if len(voices) == 0 {
		fmt.Fprintln(out, "The speech engine uses its default voice.")
		return nil
	}

	selected := app.Synthesizer.Voice()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tNAME\tLANGUAGE")
	for _, v := range voices {
		mark := " "
		if selected != nil && v.Name == selected.Name {
			mark = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", mark, v.Name, v.Language)
	}
	return w.Flush()
}
