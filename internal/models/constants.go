// Package models contains data types and constants for the companion client.
package models

import "time"

// Endpoints of the companion service, relative to the configured base URL
const (
	EndpointChat      = "/api/chat"
	EndpointSentiment = "/api/sentiment"
	EndpointTopics    = "/api/topics"
)

// DefaultBaseURL is used when neither the config file nor the environment names a service
const DefaultBaseURL = "http://localhost:5000"

// FallbackReply is appended instead of a companion reply when the service cannot be reached
const FallbackReply = "I'm having trouble connecting right now. Could we try again in a moment?"

// MoodResetDelay is how long the avatar keeps a mood animation before returning to idle
const MoodResetDelay = 3 * time.Second

// SuggestionLimit is the message count at which topic suggestions stop being offered
const SuggestionLimit = 3

// FallbackTopics are offered when the topics endpoint fails
func FallbackTopics() []string {
	return []string{
		"How are you feeling today?",
		"Would you like to talk about your family?",
		"What activities did you enjoy when you were younger?",
		"Have you read any good books lately?",
	}
}

// DefaultHeaders returns the headers sent with every service request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "companion-cli",
	}
}
