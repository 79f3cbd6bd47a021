package api

import (
	"context"
	"sync"

	"github.com/diogo/companion/internal/models"
)

// MockClient is a mock implementation of ServiceClient for testing
type MockClient struct {
	mu sync.Mutex

	// Mock return values
	ChatResponse  string
	ChatErr       error
	SentimentVal  models.Sentiment
	SentimentErr  error
	TopicsVal     []string
	TopicsErr     error
	ChatHook      func(ctx context.Context) // runs before GetChatResponse returns
	SentimentHook func(ctx context.Context)

	// Call counters/recorders
	ChatCalls      int
	SentimentCalls int
	TopicsCalls    int
	LastMessage    string
	LastHistory    []models.Message
}

// Ensure MockClient implements ServiceClient
var _ ServiceClient = (*MockClient)(nil)

func (m *MockClient) GetChatResponse(ctx context.Context, message string, history []models.Message) (string, error) {
	m.mu.Lock()
	m.ChatCalls++
	m.LastMessage = message
	m.LastHistory = append([]models.Message(nil), history...)
	hook := m.ChatHook
	resp, err := m.ChatResponse, m.ChatErr
	m.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	return resp, err
}

func (m *MockClient) GetSentiment(ctx context.Context, message string) (models.Sentiment, error) {
	m.mu.Lock()
	m.SentimentCalls++
	hook := m.SentimentHook
	val, err := m.SentimentVal, m.SentimentErr
	m.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	return val, err
}

func (m *MockClient) GetTopicSuggestions(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsCalls++
	if m.TopicsErr != nil {
		return nil, m.TopicsErr
	}
	return append([]string(nil), m.TopicsVal...), nil
}

// Calls returns the recorded call counts
func (m *MockClient) Calls() (chat, sentiment, topics int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ChatCalls, m.SentimentCalls, m.TopicsCalls
}
