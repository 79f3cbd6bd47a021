package onboarding

import (
	"errors"
	"strings"
	"testing"
)

func TestFlow_HappyPath(t *testing.T) {
	var got []string
	f := New(func(name string) error {
		got = append(got, name)
		return nil
	})

	if f.Step() != StepWelcome || f.Action() != "Get Started" {
		t.Fatalf("unexpected start: step=%d action=%s", f.Step(), f.Action())
	}
	if err := f.Next(); err != nil {
		t.Fatalf("Next() from welcome error = %v", err)
	}

	if f.Step() != StepName {
		t.Fatalf("Step() = %d, want StepName", f.Step())
	}
	if f.CanAdvance() {
		t.Error("CanAdvance() should be false without a name")
	}
	f.SetName("  Ada  ")
	if !f.CanAdvance() {
		t.Error("CanAdvance() should be true with a name")
	}
	if err := f.Next(); err != nil {
		t.Fatalf("Next() from name error = %v", err)
	}

	if !strings.Contains(f.Paragraphs()[0], "Ada!") {
		t.Errorf("features page should greet by name: %q", f.Paragraphs()[0])
	}
	if err := f.Next(); !errors.Is(err, ErrLastStep) {
		t.Errorf("Next() on last step error = %v", err)
	}

	if err := f.Complete(); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !f.Done() {
		t.Error("Done() = false")
	}
	if err := f.Complete(); !errors.Is(err, ErrCompleted) {
		t.Errorf("second Complete() error = %v", err)
	}
	if len(got) != 1 || got[0] != "Ada" {
		t.Errorf("callback calls = %v, want [Ada]", got)
	}
}

func TestFlow_NameRequired(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		f := New(nil)
		_ = f.Next()
		f.SetName(name)
		if err := f.Next(); !errors.Is(err, ErrNameRequired) {
			t.Errorf("Next() with name %q error = %v", name, err)
		}
		if f.Step() != StepName {
			t.Errorf("step advanced with name %q", name)
		}
	}
}

func TestFlow_CompleteOnlyFromLastStep(t *testing.T) {
	calls := 0
	f := New(func(string) error { calls++; return nil })

	if err := f.Complete(); !errors.Is(err, ErrNotLastStep) {
		t.Errorf("Complete() on welcome error = %v", err)
	}
	_ = f.Next()
	f.SetName("Ada")
	if err := f.Complete(); !errors.Is(err, ErrNotLastStep) {
		t.Errorf("Complete() on name error = %v", err)
	}
	if calls != 0 || f.Done() {
		t.Error("flow completed early")
	}
}

func TestFlow_CallbackError(t *testing.T) {
	boom := errors.New("disk full")
	f := New(func(string) error { return boom })
	_ = f.Next()
	f.SetName("Ada")
	_ = f.Next()

	if err := f.Complete(); !errors.Is(err, boom) {
		t.Errorf("Complete() error = %v, want wrapped callback error", err)
	}
	if !f.Done() {
		t.Error("completion is one-way even when the callback fails")
	}
	if f.CanAdvance() {
		t.Error("CanAdvance() after completion")
	}
}

func TestFlow_Titles(t *testing.T) {
	f := New(nil)
	titles := []string{f.Title()}
	_ = f.Next()
	f.SetName("Ada")
	titles = append(titles, f.Title())
	_ = f.Next()
	titles = append(titles, f.Title())

	want := []string{"Welcome to Your AI Companion", "Let's Get to Know Each Other", "How I Can Help"}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("title %d = %q, want %q", i, titles[i], want[i])
		}
	}
	if len(Features) != 4 {
		t.Errorf("len(Features) = %d", len(Features))
	}
}
