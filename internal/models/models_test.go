package models

import (
	"strings"
	"testing"
	"time"
)

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		input   string
		want    Sentiment
		wantErr bool
	}{
		{"positive", SentimentPositive, false},
		{"neutral", SentimentNeutral, false},
		{"negative", SentimentNegative, false},
		{" Positive ", SentimentPositive, false},
		{"happy", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSentiment(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSentiment(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSentiment(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnimationFor(t *testing.T) {
	tests := []struct {
		sentiment Sentiment
		want      Animation
	}{
		{SentimentPositive, AnimationHappy},
		{SentimentNegative, AnimationConcerned},
		{SentimentNeutral, AnimationIdle},
		{Sentiment("unknown"), AnimationIdle},
	}

	for _, tt := range tests {
		if got := AnimationFor(tt.sentiment); got != tt.want {
			t.Errorf("AnimationFor(%q) = %q, want %q", tt.sentiment, got, tt.want)
		}
	}
}

func TestBuildHistory_DropsBlankMessages(t *testing.T) {
	msgs := []Message{
		{ID: 1, Text: "hello", Sender: SenderUser},
		{ID: 2, Text: "   ", Sender: SenderBot},
		{ID: 3, Text: "hi there", Sender: SenderBot},
	}

	history := BuildHistory(msgs)
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0] != (HistoryEntry{Text: "hello", Sender: SenderUser}) {
		t.Errorf("unexpected first entry: %+v", history[0])
	}
	if history[1] != (HistoryEntry{Text: "hi there", Sender: SenderBot}) {
		t.Errorf("unexpected second entry: %+v", history[1])
	}
}

func TestIDSource_StrictlyIncreasing(t *testing.T) {
	var ids IDSource
	now := time.UnixMilli(1_700_000_000_000)

	first := ids.Next(now)
	second := ids.Next(now)
	third := ids.Next(now.Add(-time.Second))

	if first != now.UnixMilli() {
		t.Errorf("first id = %d, want %d", first, now.UnixMilli())
	}
	if second <= first || third <= second {
		t.Errorf("ids not increasing: %d, %d, %d", first, second, third)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.TextToSpeech {
		t.Error("text-to-speech should default to on")
	}
	if s.FontSize != FontMedium {
		t.Errorf("FontSize = %q, want medium", s.FontSize)
	}
	if s.CompanionName != "Companion" || s.UserName != "Friend" {
		t.Errorf("unexpected default names: %q / %q", s.CompanionName, s.UserName)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"extra large font", func(s *Settings) { s.FontSize = FontExtraLarge }, false},
		{"bad font", func(s *Settings) { s.FontSize = "huge" }, true},
		{"companion name at limit", func(s *Settings) { s.CompanionName = strings.Repeat("a", 15) }, false},
		{"companion name too long", func(s *Settings) { s.CompanionName = strings.Repeat("a", 16) }, true},
		{"user name at limit", func(s *Settings) { s.UserName = strings.Repeat("é", 20) }, false},
		{"user name too long", func(s *Settings) { s.UserName = strings.Repeat("b", 21) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := Settings{
		FontSize:      "giant",
		CompanionName: "  " + strings.Repeat("x", 20) + "  ",
		UserName:      "   ",
	}

	n := s.Normalize()
	if n.FontSize != FontMedium {
		t.Errorf("FontSize = %q, want medium", n.FontSize)
	}
	if len(n.CompanionName) != MaxCompanionNameLength {
		t.Errorf("CompanionName length = %d, want %d", len(n.CompanionName), MaxCompanionNameLength)
	}
	if n.UserName != DefaultUserName {
		t.Errorf("UserName = %q, want %q", n.UserName, DefaultUserName)
	}
	if err := n.Validate(); err != nil {
		t.Errorf("normalized settings should validate: %v", err)
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{17, "afternoon"},
		{18, "evening"},
		{23, "evening"},
	}

	for _, tt := range tests {
		at := time.Date(2025, 6, 1, tt.hour, 15, 0, 0, time.UTC)
		if got := TimeOfDay(at); got != tt.want {
			t.Errorf("TimeOfDay(%02d:00) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestGreetings(t *testing.T) {
	morning := time.Date(2025, 3, 9, 9, 30, 0, 0, time.Local)
	if got := ReturningGreeting("Ada", morning); got != "Good morning, Ada! How are you feeling today?" {
		t.Errorf("ReturningGreeting = %q", got)
	}

	got := WelcomeGreeting("Ada", "Companion")
	if !strings.Contains(got, "Ada") || !strings.Contains(got, "I'm Companion") {
		t.Errorf("WelcomeGreeting = %q", got)
	}
}

func TestFallbackTopics(t *testing.T) {
	topics := FallbackTopics()
	if len(topics) != 4 {
		t.Fatalf("expected 4 fallback topics, got %d", len(topics))
	}
	topics[0] = "mutated"
	if FallbackTopics()[0] == "mutated" {
		t.Error("FallbackTopics should return a fresh slice")
	}
}
