package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/diogo/companion/internal/api"
	"github.com/diogo/companion/internal/avatar"
	"github.com/diogo/companion/internal/config"
	"github.com/diogo/companion/internal/conversation"
	"github.com/diogo/companion/internal/history"
	"github.com/diogo/companion/internal/logging"
	"github.com/diogo/companion/internal/speech"
	"github.com/diogo/companion/internal/store"
	"github.com/diogo/companion/internal/topics"
	"github.com/diogo/companion/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	Run(opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Client is the companion service client. Nil builds one from the config.
	Client api.ServiceClient

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Synthesis and Recognition replace the command-line speech engines
	Synthesis   speech.SynthesisEngine
	Recognition speech.RecognitionEngine

	// Clipboard replaces the system clipboard
	Clipboard func(string) error

	// IsTerminal reports whether stdout is a terminal. Nil checks os.Stdout.
	IsTerminal func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) Run(opts tui.Options) error {
	return tui.Run(opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI: &DefaultTUI{},
	}
}

// App is everything a command needs, built from the configuration
type App struct {
	Config      config.Config
	DataDir     string
	Logger      zerolog.Logger
	Settings    *store.SettingsStore
	Client      api.ServiceClient
	Synthesizer *speech.Synthesizer
	Recognizer  *speech.Recognizer
	Animator    *avatar.Animator
	Machine     *conversation.Machine
	Topics      *topics.Provider
	Transcripts *history.Store

	closers []io.Closer
}

// loadConfig reads the config file and applies the global flags on top
func loadConfig() (config.Config, error) {
	if dataDirFlag != "" {
		if err := os.Setenv(config.EnvHome, dataDirFlag); err != nil {
			return config.Config{}, fmt.Errorf("failed to set data directory: %w", err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if apiURLFlag != "" {
		cfg.APIBaseURL = apiURLFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newApp wires the collaborators. The caller must Close the app.
func newApp(deps *Dependencies) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dataDir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DataDir: dataDir}

	logger, err := logging.New(logging.Options{
		Dir:   filepath.Join(dataDir, "logs"),
		File:  cfg.Log.File,
		Level: cfg.Log.Level,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		app.Logger = zerolog.Nop()
	} else {
		app.Logger = logger.Logger
		app.closers = append(app.closers, logger)
	}

	kv, err := store.Open(cfg.Storage, dataDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	app.closers = append(app.closers, kv)
	app.Settings = store.NewSettingsStore(kv)

	if deps != nil && deps.Client != nil {
		app.Client = deps.Client
	} else {
		client, err := api.NewClient(
			api.WithBaseURL(cfg.APIBaseURL),
			api.WithTimeout(cfg.RequestTimeout()),
			api.WithLogger(logging.Component(app.Logger, "api")),
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		app.Client = client
	}

	var synthesis speech.SynthesisEngine
	var recognition speech.RecognitionEngine
	if deps != nil {
		synthesis, recognition = deps.Synthesis, deps.Recognition
	}
	if synthesis == nil {
		command := cfg.Speech.SynthesisCommand
		if command == "" {
			command = speech.DetectSynthesisCommand()
		}
		synthesis = speech.NewCommandSynthesisEngine(command, logging.Component(app.Logger, "tts"))
	}
	if recognition == nil {
		recognition = speech.NewCommandRecognitionEngine(cfg.Speech.RecognitionCommand, logging.Component(app.Logger, "stt"))
	}

	app.Synthesizer = speech.NewSynthesizer(synthesis,
		speech.WithVoiceMarkers(cfg.Speech.VoiceMarkers...),
		speech.WithRate(cfg.Speech.Rate),
		speech.WithSynthesisLogger(app.Logger),
	)
	app.Recognizer = speech.NewRecognizer(recognition, app.Logger)
	app.Animator = avatar.New()

	app.Machine = conversation.New(conversation.Deps{
		Client:  app.Client,
		Store:   app.Settings,
		Speaker: app.Synthesizer,
		Mood:    app.Animator,
		Logger:  app.Logger,
	})
	app.Topics = topics.NewProvider(app.Client, app.Logger)

	transcripts, err := history.NewStore(dataDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open transcripts: %w", err)
	}
	app.Transcripts = transcripts

	app.Logger.Debug().
		Str("api", cfg.APIBaseURL).
		Str("storage", cfg.Storage.Backend).
		Bool("tts", app.Synthesizer.Supported()).
		Bool("stt", app.Recognizer.Supported()).
		Msg("app initialized")

	return app, nil
}

// Close stops speech and releases storage and the log file
func (a *App) Close() {
	if a.Synthesizer != nil {
		a.Synthesizer.Cancel()
	}
	if a.Recognizer != nil {
		a.Recognizer.Stop()
	}
	if a.Animator != nil {
		a.Animator.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

func terminalFor(deps *Dependencies) bool {
	if deps != nil && deps.IsTerminal != nil {
		return deps.IsTerminal()
	}
	return isStdoutTTY()
}

func clipboardFor(deps *Dependencies) func(string) error {
	if deps != nil && deps.Clipboard != nil {
		return deps.Clipboard
	}
	return clipboard.WriteAll
}
