package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewTranscriptsCmd creates the transcripts command group
func NewTranscriptsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Manage exported conversations",
		Long: `View the conversations you saved with /export.

Transcripts are written to the transcripts directory inside the data directory.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscriptsList(cmd, deps)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscriptsShow(cmd, deps, args[0])
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

func runTranscriptsList(cmd *cobra.Command, deps *Dependencies) error {
	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.Transcripts.List()
	if err != nil {
		return fmt.Errorf("failed to list transcripts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No transcripts found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tFORMAT\tSIZE\tSAVED")
	_, _ = fmt.Fprintln(w, "----\t------\t----\t-----")

	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.Name, entry.Format, formatSize(entry.Size), entry.ModTime.Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func runTranscriptsShow(cmd *cobra.Command, deps *Dependencies, name string) error {
	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	// Only plain file names inside the transcripts directory
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid transcript name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(app.Transcripts.Dir(), name))
	if err != nil {
		return fmt.Errorf("transcript not found: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func formatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
