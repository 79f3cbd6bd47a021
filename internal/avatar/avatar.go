// Package avatar maps the conversation mood to the companion's display animation.
package avatar

import (
	"sync"
	"time"

	"github.com/diogo/companion/internal/models"
)

// Task is a scheduled function that can be stopped
type Task interface {
	Stop() bool
}

// Scheduler runs f once after d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// SystemScheduler schedules with time.AfterFunc
func SystemScheduler() Scheduler {
	return timerScheduler{}
}

// Animator holds the current animation. Each mood change shows the mapped animation and
// schedules a single reset to idle; a newer mood replaces the pending reset.
type Animator struct {
	mu         sync.Mutex
	scheduler  Scheduler
	delay      time.Duration
	mood       models.Sentiment
	animation  models.Animation
	task       Task
	generation uint64
	closed     bool
	onChange   func(models.Animation)
}

// Option configures an Animator
type Option func(*Animator)

// WithScheduler replaces the timer source
func WithScheduler(s Scheduler) Option {
	return func(a *Animator) {
		a.scheduler = s
	}
}

// WithDelay sets how long a mood animation is shown
func WithDelay(d time.Duration) Option {
	return func(a *Animator) {
		a.delay = d
	}
}

// WithOnChange registers fn to run after every animation change
func WithOnChange(fn func(models.Animation)) Option {
	return func(a *Animator) {
		a.onChange = fn
	}
}

// New creates an idle animator with a neutral mood
func New(opts ...Option) *Animator {
	a := &Animator{
		scheduler: SystemScheduler(),
		delay:     models.MoodResetDelay,
		mood:      models.SentimentNeutral,
		animation: models.AnimationIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnChange replaces the change callback
func (a *Animator) OnChange(fn func(models.Animation)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// SetMood shows the animation for s and restarts the reset timer
func (a *Animator) SetMood(s models.Sentiment) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.task != nil {
		a.task.Stop()
	}
	a.generation++
	gen := a.generation
	a.mood = s
	a.animation = models.AnimationFor(s)
	a.task = a.scheduler.AfterFunc(a.delay, func() { a.reset(gen) })
	animation := a.animation
	a.mu.Unlock()

	a.notify(animation)
}

// reset returns to idle unless a newer mood arrived or the animator was closed
func (a *Animator) reset(gen uint64) {
	a.mu.Lock()
	if a.closed || gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.task = nil
	changed := a.animation != models.AnimationIdle
	a.animation = models.AnimationIdle
	a.mu.Unlock()

	if changed {
		a.notify(models.AnimationIdle)
	}
}

// Animation returns the animation currently displayed
func (a *Animator) Animation() models.Animation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.animation
}

// Mood returns the last mood set
func (a *Animator) Mood() models.Sentiment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mood
}

// Close cancels the pending reset. Later SetMood calls are ignored.
func (a *Animator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.task != nil {
		a.task.Stop()
		a.task = nil
	}
	a.closed = true
}

func (a *Animator) notify(animation models.Animation) {
	a.mu.Lock()
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn(animation)
	}
}
