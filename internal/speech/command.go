package speech

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// baseWordsPerMinute is the normal speaking speed of say and espeak
const baseWordsPerMinute = 175

// DetectSynthesisCommand returns the first installed TTS command, or "" when none is found
func DetectSynthesisCommand() string {
	candidates := []string{"espeak-ng", "espeak", "spd-say"}
	if runtime.GOOS == "darwin" {
		candidates = append([]string{"say"}, candidates...)
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// CommandSynthesisEngine speaks through a system TTS command
type CommandSynthesisEngine struct {
	command string
	logger  zerolog.Logger

	mu           sync.Mutex
	current      *exec.Cmd
	voices       []Voice
	voicesLoaded bool
}

// NewCommandSynthesisEngine creates an engine for command. An empty command is auto-detected.
func NewCommandSynthesisEngine(command string, logger zerolog.Logger) *CommandSynthesisEngine {
	if command == "" {
		command = DetectSynthesisCommand()
	}
	return &CommandSynthesisEngine{
		command: command,
		logger:  logger.With().Str("provider", "command-tts").Str("command", command).Logger(),
	}
}

// Command returns the command the engine runs
func (e *CommandSynthesisEngine) Command() string {
	return e.command
}

// Available checks that the command exists
func (e *CommandSynthesisEngine) Available() bool {
	if e.command == "" {
		return false
	}
	_, err := exec.LookPath(e.command)
	return err == nil
}

func (e *CommandSynthesisEngine) kind() string {
	return filepath.Base(e.command)
}

// Voices lists the installed voices. The list is loaded once.
func (e *CommandSynthesisEngine) Voices() []Voice {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.voicesLoaded {
		return e.voices
	}
	e.voicesLoaded = true

	var args []string
	var parse func(string) []Voice
	switch e.kind() {
	case "say":
		args, parse = []string{"-v", "?"}, parseSayVoices
	case "espeak", "espeak-ng":
		args, parse = []string{"--voices"}, parseEspeakVoices
	case "spd-say":
		args, parse = []string{"-L"}, parseSpdVoices
	default:
		return nil
	}

	out, err := exec.Command(e.command, args...).Output()
	if err != nil {
		e.logger.Debug().Err(err).Msg("voice listing failed")
		return nil
	}
	e.voices = parse(string(out))
	return e.voices
}

// Speak starts the command and reports its exit through h
func (e *CommandSynthesisEngine) Speak(ctx context.Context, u Utterance, h SynthesisHandler) error {
	if !e.Available() {
		return fmt.Errorf("speech command %q not found", e.command)
	}

	cmd := exec.CommandContext(ctx, e.command, synthesisArgs(e.kind(), u)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", e.command, err)
	}

	e.mu.Lock()
	e.current = cmd
	e.mu.Unlock()

	h.OnStart()

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		if e.current == cmd {
			e.current = nil
		}
		e.mu.Unlock()

		if err != nil && ctx.Err() == nil {
			h.OnError(fmt.Errorf("%s exited: %w", e.command, err))
			return
		}
		h.OnEnd()
	}()

	return nil
}

// Cancel kills the running command
func (e *CommandSynthesisEngine) Cancel() {
	e.mu.Lock()
	cmd := e.current
	e.current = nil
	e.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// synthesisArgs builds the command line for an utterance
func synthesisArgs(kind string, u Utterance) []string {
	var args []string
	wpm := strconv.Itoa(int(float64(baseWordsPerMinute) * u.Rate))

	switch kind {
	case "say":
		if u.Voice != nil {
			args = append(args, "-v", u.Voice.Name)
		}
		if u.Rate > 0 {
			args = append(args, "-r", wpm)
		}
	case "espeak", "espeak-ng":
		if u.Voice != nil {
			args = append(args, "-v", u.Voice.Name)
		}
		if u.Rate > 0 {
			args = append(args, "-s", wpm)
		}
		if u.Pitch > 0 {
			args = append(args, "-p", strconv.Itoa(int(50*u.Pitch)))
		}
	case "spd-say":
		args = append(args, "-w")
		if u.Voice != nil {
			args = append(args, "-y", u.Voice.Name)
		}
		if u.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(int(math.Round((u.Rate-1)*100))))
		}
	}

	return append(args, u.Text)
}

// parseSayVoices parses `say -v ?` lines: "Samantha   en_US   # Hello, my name is Samantha."
func parseSayVoices(out string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		voices = append(voices, Voice{
			Name:     strings.Join(fields[:len(fields)-1], " "),
			Language: fields[len(fields)-1],
		})
	}
	return voices
}

// parseEspeakVoices parses `espeak --voices`: "Pty Language Age/Gender VoiceName File Other".
func parseEspeakVoices(out string) []Voice {
	var voices []Voice
	for i, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if i == 0 || len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Language: fields[1]})
	}
	return voices
}

// parseSpdVoices parses `spd-say -L`: "NAME LANGUAGE VARIANT"
func parseSpdVoices(out string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] == "NAME" {
			continue
		}
		voices = append(voices, Voice{Name: fields[0], Language: fields[1]})
	}
	return voices
}

// CommandRecognitionEngine runs a recognizer program that prints one result per line.
// Lines starting with "final:" are final results.
type CommandRecognitionEngine struct {
	command string
	args    []string
	logger  zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandRecognitionEngine creates an engine from a command line such as "vosk-listen --lang en"
func NewCommandRecognitionEngine(commandLine string, logger zerolog.Logger) *CommandRecognitionEngine {
	fields := strings.Fields(commandLine)
	e := &CommandRecognitionEngine{logger: logger.With().Str("provider", "command-stt").Logger()}
	if len(fields) > 0 {
		e.command = fields[0]
		e.args = fields[1:]
	}
	return e
}

// Available checks that the command is configured and exists
func (e *CommandRecognitionEngine) Available() bool {
	if e.command == "" {
		return false
	}
	_, err := exec.LookPath(e.command)
	return err == nil
}

// Start runs the recognizer until it exits or Stop is called
func (e *CommandRecognitionEngine) Start(ctx context.Context, h RecognitionHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, e.command, e.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open recognizer output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", e.command, err)
	}

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go func() {
		defer cancel()

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if rest, ok := strings.CutPrefix(line, "final:"); ok {
				h.OnResult(strings.TrimSpace(rest), true)
				continue
			}
			h.OnResult(line, false)
		}

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			h.OnError(fmt.Errorf("%s exited: %w", e.command, err))
			return
		}
		h.OnEnd()
	}()

	return nil
}

// Stop kills the recognizer
func (e *CommandRecognitionEngine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
