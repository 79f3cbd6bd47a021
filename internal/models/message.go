package models

import (
	"strings"
	"sync"
	"time"
)

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one entry of the conversation log. Messages are never modified after they
// are appended.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEntry is the wire form of a prior message sent as chat context
type HistoryEntry struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// BuildHistory reduces a message log to chat context, dropping blank messages
func BuildHistory(messages []Message) []HistoryEntry {
	history := make([]HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		history = append(history, HistoryEntry{Text: msg.Text, Sender: msg.Sender})
	}
	return history
}

// IDSource hands out message IDs derived from the creation time in milliseconds.
// IDs are strictly increasing even when several messages share a millisecond.
type IDSource struct {
	mu   sync.Mutex
	last int64
}

// Next returns the ID for a message created at t
func (s *IDSource) Next(t time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := t.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
