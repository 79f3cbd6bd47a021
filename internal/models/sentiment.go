package models

import (
	"fmt"
	"strings"
)

// Sentiment is the mood classification of the user's latest message
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment converts a service label into a Sentiment
func ParseSentiment(label string) (Sentiment, error) {
	switch s := Sentiment(strings.ToLower(strings.TrimSpace(label))); s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return s, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", label)
	}
}

// Animation is the avatar's display animation
type Animation string

const (
	AnimationIdle      Animation = "idle"
	AnimationHappy     Animation = "happy"
	AnimationConcerned Animation = "concerned"
)

// AnimationFor maps a sentiment to the avatar animation shown right after it changes
func AnimationFor(s Sentiment) Animation {
	switch s {
	case SentimentPositive:
		return AnimationHappy
	case SentimentNegative:
		return AnimationConcerned
	default:
		return AnimationIdle
	}
}
