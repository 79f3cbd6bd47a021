package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/companion/internal/errors"
)

// DefaultVoiceMarkers are matched against voice names, in order
var DefaultVoiceMarkers = []string{"Female", "Samantha", "Joanna"}

// Synthesizer vocalizes one utterance at a time. Speak cancels whatever is playing.
type Synthesizer struct {
	mu         sync.Mutex
	engine     SynthesisEngine
	logger     zerolog.Logger
	markers    []string
	rate       float64
	pitch      float64
	speaking   bool
	err        error
	generation uint64
	cancel     context.CancelFunc
	onChange   func()
}

// SynthesizerOption configures a Synthesizer
type SynthesizerOption func(*Synthesizer)

// WithVoiceMarkers replaces the preferred voice markers
func WithVoiceMarkers(markers ...string) SynthesizerOption {
	return func(s *Synthesizer) {
		if len(markers) > 0 {
			s.markers = markers
		}
	}
}

// WithRate sets the speaking rate (1.0 is normal)
func WithRate(rate float64) SynthesizerOption {
	return func(s *Synthesizer) {
		if rate > 0 {
			s.rate = rate
		}
	}
}

// WithSynthesisLogger sets the logger
func WithSynthesisLogger(logger zerolog.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		s.logger = logger.With().Str("component", "synthesizer").Logger()
	}
}

// NewSynthesizer creates a synthesizer. engine may be nil when no synthesizer exists.
func NewSynthesizer(engine SynthesisEngine, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		engine:  engine,
		logger:  zerolog.Nop(),
		markers: DefaultVoiceMarkers,
		rate:    DefaultRate,
		pitch:   DefaultPitch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectVoice picks the first voice whose name contains a marker, trying markers in
// order, else the first voice. It returns nil when there are no voices.
func SelectVoice(voices []Voice, markers []string) *Voice {
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		for i := range voices {
			if strings.Contains(voices[i].Name, marker) {
				v := voices[i]
				return &v
			}
		}
	}
	if len(voices) > 0 {
		v := voices[0]
		return &v
	}
	return nil
}

// OnChange registers fn to run after every state change
func (s *Synthesizer) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Supported reports whether synthesis is possible
func (s *Synthesizer) Supported() bool {
	return s.engine != nil && s.engine.Available()
}

// Voices lists the voices the engine offers
func (s *Synthesizer) Voices() []Voice {
	if !s.Supported() {
		return nil
	}
	return s.engine.Voices()
}

// Voice returns the voice Speak would use
func (s *Synthesizer) Voice() *Voice {
	if !s.Supported() {
		return nil
	}
	return SelectVoice(s.engine.Voices(), s.markers)
}

// Speak cancels the current utterance and starts a new one
func (s *Synthesizer) Speak(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !s.Supported() {
		return apierrors.NewCapabilityUnavailableError("speech synthesis")
	}

	s.Cancel()

	utterance := Utterance{
		Text:  text,
		Voice: s.Voice(),
		Rate:  s.rate,
		Pitch: s.pitch,
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.speaking = true
	s.err = nil
	s.mu.Unlock()

	if err := s.engine.Speak(ctx, utterance, &utteranceHandler{s: s, gen: gen}); err != nil {
		s.finish(gen, err)
		cancel()
		return err
	}

	s.notify()
	return nil
}

// Cancel stops speaking immediately. It is safe to call at any time.
func (s *Synthesizer) Cancel() {
	s.mu.Lock()
	if !s.speaking && s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.speaking = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.engine.Cancel()
	s.notify()
}

// Speaking reports whether an utterance is in progress
func (s *Synthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Err returns the error of the last utterance, if any
func (s *Synthesizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// finish ends utterance gen. Calls for an older utterance are ignored.
func (s *Synthesizer) finish(gen uint64, err error) {
	s.mu.Lock()
	if s.generation != gen || !s.speaking {
		s.mu.Unlock()
		return
	}
	s.speaking = false
	s.err = err
	s.cancel = nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().Err(err).Msg("speech synthesis error")
	}
	s.notify()
}

func (s *Synthesizer) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type utteranceHandler struct {
	s   *Synthesizer
	gen uint64
}

func (h *utteranceHandler) OnStart() {
	h.s.mu.Lock()
	if h.s.generation != h.gen || h.s.cancel == nil {
		h.s.mu.Unlock()
		return
	}
	changed := !h.s.speaking
	h.s.speaking = true
	h.s.mu.Unlock()
	if changed {
		h.s.notify()
	}
}

func (h *utteranceHandler) OnEnd() {
	h.s.finish(h.gen, nil)
}

func (h *utteranceHandler) OnError(err error) {
	h.s.finish(h.gen, err)
}
