// Package onboarding implements the first-run introduction: a welcome page, a name
// prompt and a features page, traversed forward only.
package onboarding

import (
	"errors"
	"fmt"
	"strings"
)

// Step is a page of the flow
type Step int

const (
	StepWelcome Step = iota
	StepName
	StepFeatures
)

// StepCount is the number of pages
const StepCount = 3

var (
	ErrNameRequired = errors.New("please enter your name to continue")
	ErrLastStep     = errors.New("already on the last step")
	ErrNotLastStep  = errors.New("onboarding can only be completed from the last step")
	ErrCompleted    = errors.New("onboarding already completed")
)

// Features are listed on the last page
var Features = []string{
	"Have friendly conversations",
	"Listen to your stories and memories",
	"Suggest topics if you're not sure what to talk about",
	"Respond to voice input if you prefer speaking",
}

// Flow tracks the current page and the draft name
type Flow struct {
	step       Step
	name       string
	done       bool
	onComplete func(name string) error
}

// New creates a flow on the welcome page. onComplete receives the trimmed name once.
func New(onComplete func(name string) error) *Flow {
	return &Flow{onComplete: onComplete}
}

// Step returns the current page
func (f *Flow) Step() Step {
	return f.step
}

// Name returns the draft name as typed
func (f *Flow) Name() string {
	return f.name
}

// SetName updates the draft name
func (f *Flow) SetName(name string) {
	f.name = name
}

// Done reports whether the flow has completed
func (f *Flow) Done() bool {
	return f.done
}

// CanAdvance reports whether Next or Complete would succeed
func (f *Flow) CanAdvance() bool {
	if f.done {
		return false
	}
	if f.step == StepName {
		return strings.TrimSpace(f.name) != ""
	}
	return true
}

// Next moves to the following page
func (f *Flow) Next() error {
	switch {
	case f.done:
		return ErrCompleted
	case f.step == StepFeatures:
		return ErrLastStep
	case f.step == StepName && strings.TrimSpace(f.name) == "":
		return ErrNameRequired
	}
	f.step++
	return nil
}

// Complete finishes the flow from the last page and hands the name to the callback
func (f *Flow) Complete() error {
	if f.done {
		return ErrCompleted
	}
	if f.step != StepFeatures {
		return ErrNotLastStep
	}
	f.done = true
	if f.onComplete == nil {
		return nil
	}
	if err := f.onComplete(strings.TrimSpace(f.name)); err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// Title returns the heading of the current page
func (f *Flow) Title() string {
	switch f.step {
	case StepWelcome:
		return "Welcome to Your AI Companion"
	case StepName:
		return "Let's Get to Know Each Other"
	default:
		return "How I Can Help"
	}
}

// Paragraphs returns the body text of the current page
func (f *Flow) Paragraphs() []string {
	switch f.step {
	case StepWelcome:
		return []string{
			"Hello! I'm your friendly AI companion. I'm here to chat with you, listen to your thoughts, and keep you company.",
			"We can talk about anything you'd like - your day, your memories, current events, or just have a friendly conversation.",
		}
	case StepName:
		return []string{"I'd love to know what to call you. What's your name?"}
	default:
		return []string{
			fmt.Sprintf("Nice to meet you, %s! Here's what I can do:", strings.TrimSpace(f.name)),
			"I'm here to be a friendly companion whenever you want to chat.",
		}
	}
}

// Action returns the label of the button that advances the current page
func (f *Flow) Action() string {
	switch f.step {
	case StepWelcome:
		return "Get Started"
	case StepName:
		return "Continue"
	default:
		return "Start Chatting"
	}
}
