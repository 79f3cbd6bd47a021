package speech

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/companion/internal/errors"
)

// Recognizer turns a RecognitionEngine into a single-session transcript source.
// Each result replaces the transcript; it is cleared only when a new session starts.
type Recognizer struct {
	mu         sync.Mutex
	engine     RecognitionEngine
	logger     zerolog.Logger
	listening  bool
	transcript string
	final      bool
	err        error
	session    uint64
	cancel     context.CancelFunc
	onChange   func()
}

// NewRecognizer creates a recognizer. engine may be nil when no recognizer exists.
func NewRecognizer(engine RecognitionEngine, logger zerolog.Logger) *Recognizer {
	return &Recognizer{
		engine: engine,
		logger: logger.With().Str("component", "recognizer").Logger(),
	}
}

// OnChange registers fn to run after every state or transcript change
func (r *Recognizer) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Supported reports whether recognition is possible
func (r *Recognizer) Supported() bool {
	return r.engine != nil && r.engine.Available()
}

// Start opens a new listening session. It does nothing while a session is active.
func (r *Recognizer) Start() error {
	if !r.Supported() {
		err := apierrors.NewCapabilityUnavailableError("speech recognition")
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		r.notify()
		return err
	}

	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return nil
	}
	r.session++
	id := r.session
	r.transcript = ""
	r.final = false
	r.err = nil
	r.listening = true
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	r.logger.Debug().Uint64("session", id).Msg("listening")

	if err := r.engine.Start(ctx, &sessionHandler{r: r, id: id}); err != nil {
		r.mu.Lock()
		if r.session == id {
			r.listening = false
			r.err = err
			r.cancel = nil
		}
		r.mu.Unlock()
		cancel()
		r.logger.Warn().Err(err).Msg("recognition failed to start")
		r.notify()
		return err
	}

	r.notify()
	return nil
}

// Stop ends the active session. The transcript is kept.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		return
	}
	r.listening = false
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.engine.Stop()
	r.notify()
}

// Listening reports whether a session is active
func (r *Recognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

// Transcript returns the latest result of the current or last session
func (r *Recognizer) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transcript
}

// Final reports whether the transcript came from a final result
func (r *Recognizer) Final() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}

// Err returns the error that ended the last session or prevented it from starting
func (r *Recognizer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recognizer) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// sessionHandler forwards engine events for one session. Events from a
// superseded session are dropped.
type sessionHandler struct {
	r  *Recognizer
	id uint64
}

func (h *sessionHandler) OnResult(text string, final bool) {
	h.r.mu.Lock()
	if h.r.session != h.id || !h.r.listening {
		h.r.mu.Unlock()
		return
	}
	h.r.transcript = text
	h.r.final = final
	h.r.mu.Unlock()
	h.r.notify()
}

func (h *sessionHandler) OnError(err error) {
	h.r.mu.Lock()
	if h.r.session != h.id || !h.r.listening {
		h.r.mu.Unlock()
		return
	}
	h.r.listening = false
	h.r.err = err
	h.r.cancel = nil
	h.r.mu.Unlock()
	h.r.logger.Warn().Err(err).Uint64("session", h.id).Msg("recognition error")
	h.r.notify()
}

func (h *sessionHandler) OnEnd() {
	h.r.mu.Lock()
	if h.r.session != h.id || !h.r.listening {
		h.r.mu.Unlock()
		return
	}
	h.r.listening = false
	h.r.cancel = nil
	h.r.mu.Unlock()
	h.r.notify()
}
