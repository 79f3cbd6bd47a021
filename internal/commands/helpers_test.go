package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/diogo/companion/internal/api"
	"github.com/diogo/companion/internal/config"
	"github.com/diogo/companion/internal/speech"
	"github.com/diogo/companion/internal/tui"
)

// fakeTUI records the options it was started with
type fakeTUI struct {
	calls int
	opts  tui.Options
	err   error
}

func (f *fakeTUI) Run(opts tui.Options) error {
	f.calls++
	f.opts = opts
	return f.err
}

// quietSynthesis is a speech engine that finishes every utterance at once
type quietSynthesis struct {
	mu        sync.Mutex
	available bool
	voices    []speech.Voice
	spoken    []string
}

func (q *quietSynthesis) Available() bool { return q.available }
func (q *quietSynthesis) Voices() []speech.Voice { return q.voices }
func (q *quietSynthesis) Cancel() {}

func (q *quietSynthesis) Speak(ctx context.Context, u speech.Utterance, h speech.SynthesisHandler) error {
	q.mu.Lock()
	q.spoken = append(q.spoken, u.Text)
	q.mu.Unlock()
	go func() {
		h.OnStart()
		h.OnEnd()
	}()
	return nil
}

func (q *quietSynthesis) Spoken() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.spoken...)
}

type noRecognition struct{}

func (noRecognition) Available() bool { return false }
func (noRecognition) Start(context.Context, speech.RecognitionHandler) error {
	return errors.New("unavailable")
}
func (noRecognition) Stop() {}

// testDeps isolates the data directory and returns dependencies backed by fakes
func testDeps(t *testing.T, client *api.MockClient) (*Dependencies, *quietSynthesis) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvStorage, "")
	t.Setenv(config.EnvLogLevel, "")

	synth := &quietSynthesis{}
	deps := &Dependencies{
		Client:      client,
		TUI:         &fakeTUI{},
		Synthesis:   synth,
		Recognition: noRecognition{},
		Clipboard:   func(string) error { return nil },
	}
	return deps, synth
}

// execute runs the root command with args and returns stdout and stderr
func execute(t *testing.T, deps *Dependencies, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd(deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// scriptReader replays lines and then reports EOF
type scriptReader struct {
	lines   []string
	prompts []string
}

func (s *scriptReader) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

var errTest = errors.New("test failure")
