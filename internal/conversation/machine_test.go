package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/companion/internal/api"
	"github.com/diogo/companion/internal/avatar"
	apierrors "github.com/diogo/companion/internal/errors"
	"github.com/diogo/companion/internal/models"
	"github.com/diogo/companion/internal/store"
)

type fakeSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (f *fakeSpeaker) Speak(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeaker) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

// heldScheduler never fires
type heldScheduler struct{}

type heldTask struct{}

func (heldTask) Stop() bool { return true }

func (heldScheduler) AfterFunc(time.Duration, func()) avatar.Task { return heldTask{} }

type fixture struct {
	machine  *Machine
	client   *api.MockClient
	settings *store.SettingsStore
	speaker  *fakeSpeaker
	animator *avatar.Animator
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)
}

func newSettingsStore(t *testing.T) *store.SettingsStore {
	t.Helper()
	kv, err := store.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	return store.NewSettingsStore(kv)
}

func newFixture(t *testing.T, settings *store.SettingsStore) *fixture {
	t.Helper()
	f := &fixture{
		client:   &api.MockClient{SentimentVal: models.SentimentNeutral, ChatResponse: "ok"},
		settings: settings,
		speaker:  &fakeSpeaker{},
		animator: avatar.New(avatar.WithScheduler(heldScheduler{})),
	}
	f.machine = New(Deps{
		Client:  f.client,
		Store:   settings,
		Speaker: f.speaker,
		Mood:    f.animator,
		Logger:  zerolog.Nop(),
		Clock:   fixedClock,
	})
	return f
}

// onboarded returns a fixture past onboarding with a single greeting in the log
func onboarded(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, newSettingsStore(t))
	if err := f.machine.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.machine.CompleteOnboarding("Ada"); err != nil {
		t.Fatalf("CompleteOnboarding() error = %v", err)
	}
	return f
}

func TestMachine_FirstVisitStartsInOnboarding(t *testing.T) {
	f := newFixture(t, newSettingsStore(t))
	if err := f.machine.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if f.machine.State() != StateOnboarding {
		t.Errorf("State() = %s, want onboarding", f.machine.State())
	}
	if len(f.machine.Messages()) != 0 {
		t.Error("no greeting before onboarding")
	}
	if f.machine.Sentiment() != models.SentimentNeutral {
		t.Errorf("initial Sentiment() = %s, want neutral", f.machine.Sentiment())
	}
	if _, err := f.machine.Begin("hello"); !errors.Is(err, ErrNotReady) {
		t.Errorf("Begin() error = %v, want ErrNotReady", err)
	}
}

func TestMachine_CompleteOnboarding(t *testing.T) {
	settings := newSettingsStore(t)
	f := newFixture(t, settings)
	_ = f.machine.Start()

	if err := f.machine.CompleteOnboarding("   "); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank name error = %v", err)
	}

	if err := f.machine.CompleteOnboarding("  Ada "); err != nil {
		t.Fatalf("CompleteOnboarding() error = %v", err)
	}
	if f.machine.State() != StateIdle {
		t.Errorf("State() = %s, want idle", f.machine.State())
	}
	if f.machine.Settings().UserName != "Ada" {
		t.Errorf("UserName = %q", f.machine.Settings().UserName)
	}

	msgs := f.machine.Messages()
	if len(msgs) != 1 || msgs[0].Sender != models.SenderBot || !strings.Contains(msgs[0].Text, "Ada") {
		t.Fatalf("messages = %+v, want one greeting naming Ada", msgs)
	}
	if len(f.speaker.spoken) != 1 {
		t.Errorf("greeting should be spoken, spoken = %v", f.speaker.spoken)
	}

	if err := f.machine.CompleteOnboarding("Bob"); !errors.Is(err, ErrOnboarded) {
		t.Errorf("second CompleteOnboarding() error = %v", err)
	}

	stored, _ := settings.Load()
	if stored.UserName != "Ada" {
		t.Errorf("stored UserName = %q", stored.UserName)
	}
	if visited, _ := settings.HasVisited(); !visited {
		t.Error("visited marker not persisted")
	}

	// next process start greets the returning user without onboarding or network
	next := newFixture(t, settings)
	if err := next.machine.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if next.machine.State() != StateIdle {
		t.Errorf("returning State() = %s, want idle", next.machine.State())
	}
	greeting := next.machine.Messages()
	if len(greeting) != 1 || greeting[0].Text != "Good morning, Ada! How are you feeling today?" {
		t.Errorf("returning greeting = %+v", greeting)
	}
	chat, sentiment, topics := next.client.Calls()
	if chat+sentiment+topics != 0 {
		t.Error("returning greeting must not call the service")
	}
}

// gatedStore holds MarkVisited until release is closed
type gatedStore struct {
	*store.SettingsStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) MarkVisited() error {
	close(g.entered)
	<-g.release
	return g.SettingsStore.MarkVisited()
}

func TestMachine_CompleteOnboardingWhilePersisting(t *testing.T) {
	gated := &gatedStore{
		SettingsStore: newSettingsStore(t),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	m := New(Deps{Client: &api.MockClient{}, Store: gated, Logger: zerolog.Nop(), Clock: fixedClock})
	_ = m.Start()

	done := make(chan error, 1)
	go func() { done <- m.CompleteOnboarding("Ada") }()

	<-gated.entered
	if err := m.CompleteOnboarding("Bob"); !errors.Is(err, ErrOnboarded) {
		t.Errorf("overlapping CompleteOnboarding() error = %v, want ErrOnboarded", err)
	}
	close(gated.release)

	if err := <-done; err != nil {
		t.Fatalf("CompleteOnboarding() error = %v", err)
	}
	msgs := m.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "Ada") {
		t.Errorf("messages = %+v, want a single greeting naming Ada", msgs)
	}
	if m.State() != StateIdle {
		t.Errorf("State() = %s, want idle", m.State())
	}
}

func TestExchange(t *testing.T) {
	tests := []struct {
		name          string
		client        *api.MockClient
		wantSentiment models.Sentiment
		wantReply     string
		wantService   bool
		wantErr       bool
	}{
		{
			name:          "both succeed",
			client:        &api.MockClient{SentimentVal: models.SentimentPositive, ChatResponse: "Glad to hear it"},
			wantSentiment: models.SentimentPositive,
			wantReply:     "Glad to hear it",
		},
		{
			name:    "sentiment fails",
			client:  &api.MockClient{SentimentErr: apierrors.NewTransportError("post", models.EndpointSentiment, errors.New("refused")), ChatResponse: "fine"},
			wantErr: true,
		},
		{
			name:        "chat fails",
			client:      &api.MockClient{SentimentVal: models.SentimentNeutral, ChatErr: apierrors.NewServiceError(500, models.EndpointChat, "boom")},
			wantService: true,
			wantErr:     true,
		},
		{
			name:        "empty reply",
			client:      &api.MockClient{SentimentVal: models.SentimentNeutral, ChatResponse: " \n\t"},
			wantService: true,
			wantErr:     true,
		},
	}

	history := []models.Message{{Text: "earlier", Sender: models.SenderUser}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sentiment, reply, err := Exchange(context.Background(), tt.client, "hello", history)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Exchange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantService && !apierrors.IsServiceError(err) {
				t.Errorf("error = %v, want service error", err)
			}
			if sentiment != tt.wantSentiment || reply != tt.wantReply {
				t.Errorf("Exchange() = %q, %q, want %q, %q", sentiment, reply, tt.wantSentiment, tt.wantReply)
			}

			chat, sent, _ := tt.client.Calls()
			if chat != 1 || sent != 1 {
				t.Errorf("calls chat=%d sentiment=%d, want one each", chat, sent)
			}
			if tt.client.LastMessage != "hello" || len(tt.client.LastHistory) != 1 {
				t.Errorf("chat got message %q history %v", tt.client.LastMessage, tt.client.LastHistory)
			}
		})
	}
}

func TestMachine_SubmitPositive(t *testing.T) {
	f := onboarded(t)
	f.client.SentimentVal = models.SentimentPositive
	f.client.ChatResponse = "That's wonderful!"

	reply, err := f.machine.Submit(context.Background(), "I feel great today")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if reply.Text != "That's wonderful!" || reply.Sender != models.SenderBot {
		t.Errorf("reply = %+v", reply)
	}
	if f.machine.Sentiment() != models.SentimentPositive {
		t.Errorf("Sentiment() = %s, want positive", f.machine.Sentiment())
	}
	if f.animator.Animation() != models.AnimationHappy {
		t.Errorf("Animation() = %s, want happy", f.animator.Animation())
	}
	if f.machine.Loading() || f.machine.State() != StateIdle {
		t.Error("machine should be Idle after the reply")
	}

	msgs := f.machine.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(msgs))
	}
	if msgs[1].Text != "I feel great today" || !msgs[1].IsUser() {
		t.Errorf("user message = %+v", msgs[1])
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Errorf("IDs not increasing: %d then %d", msgs[i-1].ID, msgs[i].ID)
		}
	}

	// the chat request carries the log before the new message
	if len(f.client.LastHistory) != 1 || f.client.LastHistory[0].Sender != models.SenderBot {
		t.Errorf("history = %+v, want only the greeting", f.client.LastHistory)
	}
	if f.speaker.spoken[len(f.speaker.spoken)-1] != "That's wonderful!" {
		t.Errorf("reply not spoken: %v", f.speaker.spoken)
	}
}

func TestMachine_SubmitFailures(t *testing.T) {
	tests := []struct {
		name         string
		chatErr      error
		sentimentErr error
		chatResponse string
	}{
		{"chat 500", apierrors.NewServiceError(500, models.EndpointChat, "boom"), nil, ""},
		{"sentiment transport", nil, apierrors.NewTransportError("post", models.EndpointSentiment, errors.New("refused")), "fine"},
		{"both fail", errors.New("down"), errors.New("down"), ""},
		{"empty reply", nil, nil, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := onboarded(t)
			f.client.SentimentVal = models.SentimentNegative
			f.client.SentimentErr = tt.sentimentErr
			f.client.ChatErr = tt.chatErr
			f.client.ChatResponse = tt.chatResponse

			reply, err := f.machine.Submit(context.Background(), "hello")
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if reply.Text != models.FallbackReply {
				t.Errorf("reply = %q, want fallback", reply.Text)
			}
			if f.machine.Sentiment() != models.SentimentNeutral {
				t.Errorf("Sentiment() = %s, want unchanged neutral", f.machine.Sentiment())
			}
			if f.animator.Animation() != models.AnimationIdle {
				t.Error("failed turn must not change the avatar")
			}
			if f.machine.Loading() {
				t.Error("Loading() should be false")
			}
			if len(f.machine.Messages()) != 3 {
				t.Errorf("len(messages) = %d, want 3", len(f.machine.Messages()))
			}
		})
	}
}

func TestMachine_BeginGuards(t *testing.T) {
	f := onboarded(t)

	if _, err := f.machine.Begin(" \t "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank Begin() error = %v", err)
	}

	turn, err := f.machine.Begin("first")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if !f.machine.Loading() {
		t.Error("Loading() should be true while a turn is pending")
	}
	if _, err := f.machine.Begin("second"); !errors.Is(err, ErrBusy) {
		t.Errorf("Begin() while pending error = %v, want ErrBusy", err)
	}
	if len(f.machine.Messages()) != 2 {
		t.Error("refused submission must not append")
	}

	if _, err := f.machine.Resolve(context.Background(), turn); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := f.machine.Resolve(context.Background(), turn); !errors.Is(err, ErrNoPendingTurn) {
		t.Errorf("second Resolve() error = %v", err)
	}
	if _, err := f.machine.Resolve(context.Background(), nil); !errors.Is(err, ErrNoPendingTurn) {
		t.Errorf("Resolve(nil) error = %v", err)
	}
}

func TestMachine_RequestsRunConcurrently(t *testing.T) {
	f := onboarded(t)

	// each request waits for the other to start
	var wg sync.WaitGroup
	wg.Add(2)
	wait := func(ctx context.Context) {
		wg.Done()
		wg.Wait()
	}
	f.client.ChatHook = wait
	f.client.SentimentHook = wait

	done := make(chan struct{})
	go func() {
		_, _ = f.machine.Submit(context.Background(), "hello")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sentiment and chat requests did not overlap")
	}
}

func TestMachine_SuggestionsVisible(t *testing.T) {
	f := onboarded(t)
	if !f.machine.SuggestionsVisible() {
		t.Error("suggestions should show with one message")
	}
	_, _ = f.machine.Submit(context.Background(), "hello")
	if f.machine.SuggestionsVisible() {
		t.Error("suggestions should hide at three messages")
	}
}

func TestMachine_SaveSettings(t *testing.T) {
	f := onboarded(t)

	invalid := f.machine.Settings()
	invalid.CompanionName = strings.Repeat("x", 16)
	if err := f.machine.SaveSettings(invalid); err == nil {
		t.Error("expected validation error")
	}
	if f.machine.Settings().CompanionName != models.DefaultCompanionName {
		t.Error("rejected settings must not be applied")
	}

	s := f.machine.Settings()
	s.TextToSpeech = false
	s.FontSize = models.FontLarge
	if err := f.machine.SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}
	if f.speaker.cancels != 1 {
		t.Errorf("turning speech off should cancel speaking, cancels = %d", f.speaker.cancels)
	}

	spoken := len(f.speaker.spoken)
	_, _ = f.machine.Submit(context.Background(), "hello")
	if len(f.speaker.spoken) != spoken {
		t.Error("replies must not be spoken with textToSpeech off")
	}

	stored, _ := f.settings.Load()
	if stored.FontSize != models.FontLarge || stored.TextToSpeech {
		t.Errorf("stored settings = %+v", stored)
	}
}

func TestMachine_LastReplyAndSession(t *testing.T) {
	f := newFixture(t, newSettingsStore(t))
	if _, ok := f.machine.LastReply(); ok {
		t.Error("empty log has no reply")
	}
	_ = f.machine.Start()
	_ = f.machine.CompleteOnboarding("Ada")

	last, ok := f.machine.LastReply()
	if !ok || !strings.Contains(last.Text, "Ada") {
		t.Errorf("LastReply() = %+v, %v", last, ok)
	}
	if f.machine.SessionID() == "" {
		t.Error("SessionID() is empty")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateOnboarding:       "onboarding",
		StateIdle:             "idle",
		StateAwaitingResponse: "awaiting-response",
		State(42):             "unknown",
	}
	for state, want := range tests {
		if state.String() != want {
			t.Errorf("State(%d).String() = %s, want %s", int(state), state.String(), want)
		}
	}
}
