package speech

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseSayVoices(t *testing.T) {
	out := "Alex                en_US    # Most people recognize me by my voice.\n" +
		"Bad News            en_US    # The light you see at the end of the tunnel.\n" +
		"\n"
	want := []Voice{{Name: "Alex", Language: "en_US"}, {Name: "Bad News", Language: "en_US"}}
	if got := parseSayVoices(out); !reflect.DeepEqual(got, want) {
		t.Errorf("parseSayVoices() = %v, want %v", got, want)
	}
}

func TestParseEspeakVoices(t *testing.T) {
	out := "Pty Language       Age/Gender VoiceName          File                 Other Languages\n" +
		" 5  af              --/M      Afrikaans          gmw/af\n" +
		" 2  en-us           --/F      English_(America)  gmw/en-US            (en 3)\n"
	want := []Voice{{Name: "Afrikaans", Language: "af"}, {Name: "English_(America)", Language: "en-us"}}
	if got := parseEspeakVoices(out); !reflect.DeepEqual(got, want) {
		t.Errorf("parseEspeakVoices() = %v, want %v", got, want)
	}
}

func TestParseSpdVoices(t *testing.T) {
	out := "NAME                 LANGUAGE     VARIANT\nfemale1              en           none\n"
	want := []Voice{{Name: "female1", Language: "en"}}
	if got := parseSpdVoices(out); !reflect.DeepEqual(got, want) {
		t.Errorf("parseSpdVoices() = %v, want %v", got, want)
	}
}

func TestSynthesisArgs(t *testing.T) {
	voice := &Voice{Name: "Samantha"}
	u := Utterance{Text: "hi", Voice: voice, Rate: 0.9, Pitch: 1.0}

	tests := []struct {
		kind string
		want []string
	}{
		{"say", []string{"-v", "Samantha", "-r", "157", "hi"}},
		{"espeak-ng", []string{"-v", "Samantha", "-s", "157", "-p", "50", "hi"}},
		{"spd-say", []string{"-w", "-y", "Samantha", "-r", "-10", "hi"}},
		{"other", []string{"hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := synthesisArgs(tt.kind, u); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("synthesisArgs() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := synthesisArgs("say", Utterance{Text: "x"}); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("defaults = %v", got)
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	results []string
	finals  []bool
	errs    []error
	starts  int
	done    chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{done: make(chan struct{})}
}

func (h *recordingHandler) OnResult(text string, final bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, text)
	h.finals = append(h.finals, final)
}

func (h *recordingHandler) OnStart() {
	h.mu.Lock()
	h.starts++
	h.mu.Unlock()
}

func (h *recordingHandler) OnError(err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
	close(h.done)
}

func (h *recordingHandler) OnEnd() {
	close(h.done)
}

func (h *recordingHandler) wait(t *testing.T) {
	t.Helper()
	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the command to finish")
	}
}

func TestCommandRecognitionEngine(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	script := filepath.Join(t.TempDir(), "listen.sh")
	content := "#!/bin/sh\necho hel\necho\necho 'final: hello there'\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}

	engine := NewCommandRecognitionEngine(script, zerolog.Nop())
	if !engine.Available() {
		t.Fatal("engine should be available")
	}

	h := newRecordingHandler()
	if err := engine.Start(context.Background(), h); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	h.wait(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	if !reflect.DeepEqual(h.results, []string{"hel", "hello there"}) {
		t.Errorf("results = %v", h.results)
	}
	if !reflect.DeepEqual(h.finals, []bool{false, true}) {
		t.Errorf("finals = %v", h.finals)
	}
	if len(h.errs) != 0 {
		t.Errorf("errors = %v", h.errs)
	}
}

func TestCommandRecognitionEngine_NotConfigured(t *testing.T) {
	if NewCommandRecognitionEngine("", zerolog.Nop()).Available() {
		t.Error("empty command should be unavailable")
	}
	if NewCommandRecognitionEngine("definitely-not-a-recognizer-xyz", zerolog.Nop()).Available() {
		t.Error("missing command should be unavailable")
	}
}

func TestCommandSynthesisEngine_Exit(t *testing.T) {
	tests := []struct {
		command string
		wantErr bool
	}{
		{"true", false},
		{"false", true},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			if _, err := exec.LookPath(tt.command); err != nil {
				t.Skipf("%s not available", tt.command)
			}
			engine := NewCommandSynthesisEngine(tt.command, zerolog.Nop())
			if engine.Voices() != nil {
				t.Error("unknown commands list no voices")
			}

			h := newRecordingHandler()
			if err := engine.Speak(context.Background(), Utterance{Text: "hello"}, h); err != nil {
				t.Fatalf("Speak() error = %v", err)
			}
			h.wait(t)

			h.mu.Lock()
			defer h.mu.Unlock()
			if h.starts != 1 {
				t.Errorf("starts = %d, want 1", h.starts)
			}
			if (len(h.errs) > 0) != tt.wantErr {
				t.Errorf("errors = %v, wantErr %v", h.errs, tt.wantErr)
			}
		})
	}
}

func TestCommandSynthesisEngine_Missing(t *testing.T) {
	engine := NewCommandSynthesisEngine("definitely-not-a-tts-xyz", zerolog.Nop())
	if engine.Available() {
		t.Fatal("missing command should be unavailable")
	}
	if err := engine.Speak(context.Background(), Utterance{Text: "x"}, newRecordingHandler()); err == nil {
		t.Error("expected error")
	}
	engine.Cancel()
}
