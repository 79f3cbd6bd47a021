package commands

import (
	"strings"
	"testing"

	"github.com/diogo/companion/internal/api"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := NewRootCmd(nil)
	if cmd.Use != "companion" {
		t.Errorf("Expected use 'companion', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd(nil)

	for _, name := range []string{"chat", "say", "topics", "settings", "voices", "reset", "transcripts"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", name, err)
			}
			if sub.Name() != name {
				t.Errorf("Find(%q) = %s", name, sub.Name())
			}
		})
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := NewRootCmd(nil)

	for _, name := range []string{"api-url", "data-dir", "log-level"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
}

func TestRootCommand_VersionFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "version flag", args: []string{"-v"}},
		{name: "version flag long form", args: []string{"--version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := testDeps(t, &api.MockClient{})
			out, _, err := execute(t, deps, tt.args...)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if !strings.Contains(out, "companion "+Version) {
				t.Errorf("output = %q, want version", out)
			}
			if deps.TUI.(*fakeTUI).calls != 0 {
				t.Error("version should not start the chat")
			}
		})
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	deps, _ := testDeps(t, &api.MockClient{})
	if _, _, err := execute(t, deps, "hello"); err == nil {
		t.Error("expected an error for a positional argument")
	}
}

func TestRootCommand_StartsChat(t *testing.T) {
	deps, _ := testDeps(t, &api.MockClient{})
	deps.IsTerminal = func() bool { return true }

	if _, _, err := execute(t, deps); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if deps.TUI.(*fakeTUI).calls != 1 {
		t.Error("root command should start the chat interface")
	}
}
