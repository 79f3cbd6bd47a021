// Package conversation implements the companion's conversation state machine: the
// message log, the pending-reply gate and the current mood.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/companion/internal/api"
	apierrors "github.com/diogo/companion/internal/errors"
	"github.com/diogo/companion/internal/models"
)

// State is the machine's position in the conversation
type State int

const (
	StateOnboarding State = iota
	StateIdle
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateOnboarding:
		return "onboarding"
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrBusy          = errors.New("still waiting for the previous reply")
	ErrNotReady      = errors.New("onboarding has not been completed")
	ErrNameRequired  = errors.New("a name is required")
	ErrOnboarded     = errors.New("onboarding was already completed")
	ErrNoPendingTurn = errors.New("turn is not pending")
)

// Speaker vocalizes companion messages
type Speaker interface {
	Speak(text string) error
	Cancel()
}

// Mood is told about every new sentiment
type Mood interface {
	SetMood(s models.Sentiment)
}

// SettingsStore persists settings and the first-visit marker
type SettingsStore interface {
	Load() (models.Settings, error)
	Save(s models.Settings) error
	PatchUserName(name string) (models.Settings, error)
	HasVisited() (bool, error)
	MarkVisited() error
}

// Deps are the collaborators of a Machine. Speaker and Mood are optional.
type Deps struct {
	Client  api.ServiceClient
	Store   SettingsStore
	Speaker Speaker
	Mood    Mood
	Logger  zerolog.Logger
	Clock   func() time.Time
}

// Turn is a submitted user message waiting for its reply
type Turn struct {
	Message models.Message
	history []models.Message
}

// Machine owns the conversation. All methods are safe for concurrent use; at most one
// turn is pending at a time.
type Machine struct {
	mu        sync.Mutex
	client    api.ServiceClient
	store     SettingsStore
	speaker   Speaker
	mood      Mood
	logger    zerolog.Logger
	clock     func() time.Time
	ids       models.IDSource
	sessionID string

	started    bool
	completing bool // onboarding is being persisted
	state      State
	messages   []models.Message
	sentiment  models.Sentiment
	settings   models.Settings
	pending    *Turn
	onChange   func()
}

// New creates a machine in the Onboarding state
func New(deps Deps) *Machine {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	sessionID := uuid.NewString()
	return &Machine{
		client:    deps.Client,
		store:     deps.Store,
		speaker:   deps.Speaker,
		mood:      deps.Mood,
		logger:    deps.Logger.With().Str("component", "conversation").Str("session", sessionID).Logger(),
		clock:     clock,
		sessionID: sessionID,
		state:     StateOnboarding,
		sentiment: models.SentimentNeutral,
		settings:  models.DefaultSettings(),
	}
}

// OnChange registers fn to run after every state change
func (m *Machine) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Start loads the settings and greets a returning user. A first-time user stays in
// Onboarding. Storage errors are returned but the machine remains usable with defaults.
func (m *Machine) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	settings, loadErr := m.store.Load()
	if loadErr != nil {
		m.logger.Warn().Err(loadErr).Msg("failed to load settings, using defaults")
	}
	visited, visitErr := m.store.HasVisited()
	if visitErr != nil {
		m.logger.Warn().Err(visitErr).Msg("failed to read first-visit marker")
	}

	m.mu.Lock()
	m.settings = settings
	var greeting models.Message
	if visited {
		greeting = m.appendLocked(models.ReturningGreeting(settings.UserName, m.clock()), models.SenderBot)
		m.state = StateIdle
	}
	m.mu.Unlock()

	m.logger.Info().Bool("returning", visited).Msg("conversation started")
	if visited {
		m.speak(greeting.Text)
	}
	m.notify()
	return errors.Join(loadErr, visitErr)
}

// CompleteOnboarding records the user's name, marks the first visit and greets the user
func (m *Machine) CompleteOnboarding(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	m.mu.Lock()
	if m.state != StateOnboarding || m.completing {
		m.mu.Unlock()
		return ErrOnboarded
	}
	m.completing = true
	m.mu.Unlock()

	markErr := m.store.MarkVisited()
	settings, patchErr := m.store.PatchUserName(name)
	if markErr != nil || patchErr != nil {
		m.logger.Error().Err(errors.Join(markErr, patchErr)).Msg("failed to persist onboarding")
	}

	m.mu.Lock()
	m.completing = false
	m.settings = settings
	greeting := m.appendLocked(models.WelcomeGreeting(settings.UserName, settings.CompanionName), models.SenderBot)
	m.state = StateIdle
	m.mu.Unlock()

	m.speak(greeting.Text)
	m.notify()
	return errors.Join(markErr, patchErr)
}

// Begin appends the user message and enters AwaitingResponse. The returned turn must be
// passed to Resolve.
func (m *Machine) Begin(text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	m.mu.Lock()
	switch m.state {
	case StateOnboarding:
		m.mu.Unlock()
		return nil, ErrNotReady
	case StateAwaitingResponse:
		m.mu.Unlock()
		return nil, ErrBusy
	}

	history := append([]models.Message(nil), m.messages...)
	msg := m.appendLocked(text, models.SenderUser)
	turn := &Turn{Message: msg, history: history}
	m.pending = turn
	m.state = StateAwaitingResponse
	m.mu.Unlock()

	m.notify()
	return turn, nil
}

// Resolve requests the sentiment and the reply for turn, then appends the reply, or the
// fallback reply when either request fails, and returns to Idle.
func (m *Machine) Resolve(ctx context.Context, turn *Turn) (models.Message, error) {
	m.mu.Lock()
	if turn == nil || m.pending != turn {
		m.mu.Unlock()
		return models.Message{}, ErrNoPendingTurn
	}
	m.mu.Unlock()

	text := turn.Message.Text
	start := m.clock()

	sentiment, reply, err := Exchange(ctx, m.client, text, turn.history)

	m.mu.Lock()
	var botMsg models.Message
	if err != nil {
		botMsg = m.appendLocked(models.FallbackReply, models.SenderBot)
	} else {
		m.sentiment = sentiment
		botMsg = m.appendLocked(reply, models.SenderBot)
	}
	m.pending = nil
	m.state = StateIdle
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn().Err(err).Msg("reply failed, using fallback")
	} else {
		m.logger.Debug().
			Str("sentiment", string(sentiment)).
			Dur("elapsed", m.clock().Sub(start)).
			Msg("reply received")
		if m.mood != nil {
			m.mood.SetMood(sentiment)
		}
	}

	m.speak(botMsg.Text)
	m.notify()
	return botMsg, nil
}

// Submit is Begin followed by Resolve
func (m *Machine) Submit(ctx context.Context, text string) (models.Message, error) {
	turn, err := m.Begin(text)
	if err != nil {
		return models.Message{}, err
	}
	return m.Resolve(ctx, turn)
}

// SaveSettings replaces the settings after validation and applies them
func (m *Machine) SaveSettings(s models.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s = s.Normalize()
	if err := m.store.Save(s); err != nil {
		return err
	}

	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()

	if !s.TextToSpeech {
		m.StopSpeaking()
	}
	m.notify()
	return nil
}

// StopSpeaking cancels the utterance in progress
func (m *Machine) StopSpeaking() {
	if m.speaker != nil {
		m.speaker.Cancel()
	}
}

// Messages returns a copy of the log
func (m *Machine) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.messages...)
}

// LastReply returns the newest companion message
func (m *Machine) LastReply() (models.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Sender == models.SenderBot {
			return m.messages[i], true
		}
	}
	return models.Message{}, false
}

// Sentiment returns the sentiment of the last answered user message
func (m *Machine) Sentiment() models.Sentiment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sentiment
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading reports whether a reply is pending
func (m *Machine) Loading() bool {
	return m.State() == StateAwaitingResponse
}

// Settings returns the active settings
func (m *Machine) Settings() models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SuggestionsVisible reports whether topic suggestions should be offered
func (m *Machine) SuggestionsVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages) < models.SuggestionLimit
}

// SessionID identifies this run of the conversation
func (m *Machine) SessionID() string {
	return m.sessionID
}

func (m *Machine) appendLocked(text string, sender models.Sender) models.Message {
	now := m.clock()
	msg := models.Message{
		ID:        m.ids.Next(now),
		Text:      text,
		Sender:    sender,
		Timestamp: now,
	}
	m.messages = append(m.messages, msg)
	return msg
}

func (m *Machine) speak(text string) {
	if m.speaker == nil || !m.Settings().TextToSpeech {
		return
	}
	if err := m.speaker.Speak(text); err != nil && !apierrors.IsCapabilityUnavailable(err) {
		m.logger.Warn().Err(err).Msg("failed to speak")
	}
}

func (m *Machine) notify() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
