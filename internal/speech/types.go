// Package speech wraps voice recognition and voice synthesis engines behind two small
// adapters with Idle/Listening and Idle/Speaking states.
package speech

import "context"

const (
	// DefaultRate is slightly below normal speed
	DefaultRate = 0.9
	// DefaultPitch is the engine's normal pitch
	DefaultPitch = 1.0
)

// Voice is a synthesis voice offered by an engine
type Voice struct {
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
}

// Utterance is one piece of text to vocalize. A nil Voice means the engine default.
type Utterance struct {
	Text  string
	Voice *Voice
	Rate  float64
	Pitch float64
}

// RecognitionHandler receives events for one recognition session
type RecognitionHandler interface {
	OnResult(text string, final bool)
	OnError(err error)
	OnEnd()
}

// RecognitionEngine is a platform speech recognizer
type RecognitionEngine interface {
	// Available reports whether the engine can run on this system
	Available() bool
	// Start begins a session and delivers events to h until the session ends
	Start(ctx context.Context, h RecognitionHandler) error
	// Stop ends the current session
	Stop()
}

// SynthesisHandler receives events for one utterance
type SynthesisHandler interface {
	OnStart()
	OnEnd()
	OnError(err error)
}

// SynthesisEngine is a platform speech synthesizer
type SynthesisEngine interface {
	Available() bool
	Voices() []Voice
	// Speak starts vocalizing u and returns without waiting for it to finish
	Speak(ctx context.Context, u Utterance, h SynthesisHandler) error
	// Cancel stops any utterance in progress
	Cancel()
}
