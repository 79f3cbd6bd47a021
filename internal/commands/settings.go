package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/companion/internal/config"
	"github.com/diogo/companion/internal/models"
)

// settingSetters apply one value to a settings record, keyed by the stored field name
var settingSetters = map[string]func(*models.Settings, string) error{
	"textToSpeech": func(s *models.Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("textToSpeech must be true or false")
		}
		s.TextToSpeech = b
		return nil
	},
	"fontSize": func(s *models.Settings, v string) error {
		size, err := models.ParseFontSize(v)
		if err != nil {
			return err
		}
		s.FontSize = size
		return nil
	},
	"highContrast": func(s *models.Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("highContrast must be true or false")
		}
		s.HighContrast = b
		return nil
	},
	"companionName": func(s *models.Settings, v string) error {
		s.CompanionName = v
		return nil
	},
	"userName": func(s *models.Settings, v string) error {
		s.UserName = v
		return nil
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewSettingsCmd creates the settings command group
func NewSettingsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your preferences",
		Long: `Show or change the preferences the companion remembers between sessions.

Keys: ` + strings.Join(settingKeys(), ", ") + `

Examples:
  companion settings
  companion settings set fontSize large
  companion settings set companionName Sunny`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow(cmd, deps)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow(cmd, deps)
		},
	}

	setCmd := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting",
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: settingKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(cmd, deps, args[0], strings.Join(args[1:], " "))
		},
	}

	var yes bool
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget your name and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this removes your name and settings; run again with --yes to confirm")
			}
			return runReset(cmd, deps)
		},
	}
	resetCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")

	cmd.AddCommand(showCmd)
	cmd.AddCommand(setCmd)
	cmd.AddCommand(resetCmd)
	return cmd
}

func runSettingsShow(cmd *cobra.Command, deps *Dependencies) error {
	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	s, err := app.Settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "textToSpeech\t%t\n", s.TextToSpeech)
	_, _ = fmt.Fprintf(w, "fontSize\t%s\n", s.FontSize)
	_, _ = fmt.Fprintf(w, "highContrast\t%t\n", s.HighContrast)
	_, _ = fmt.Fprintf(w, "companionName\t%s\n", s.CompanionName)
	_, _ = fmt.Fprintf(w, "userName\t%s\n", s.UserName)
	if err := w.Flush(); err != nil {
		return err
	}

	if path, err := config.GetConfigPath(); err == nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render("Data directory: "+app.DataDir))
		fmt.Fprintln(out, dimStyle.Render("Config file:    "+path))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, deps *Dependencies, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(settingKeys(), ", "))
	}

	app, err := newApp(deps)
	if err != nil {
		return err
	}
	defer app.Close()

	s, err := app.Settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := set(&s, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s = s.Normalize()

	if err := app.Settings.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	app.Logger.Info().Str("key", key).Msg("setting changed")

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ %s updated", key)))
	return nil
}
