package models

import (
	"fmt"
	"time"
)

// TimeOfDay returns "morning" before noon, "afternoon" until 18:00 and "evening" after
func TimeOfDay(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

// ReturningGreeting greets a user who has been here before
func ReturningGreeting(userName string, now time.Time) string {
	return fmt.Sprintf("Good %s, %s! How are you feeling today?", TimeOfDay(now), userName)
}

// WelcomeGreeting greets a user right after onboarding
func WelcomeGreeting(userName, companionName string) string {
	return fmt.Sprintf("It's wonderful to meet you, %s! I'm %s, your companion. How are you doing today?", userName, companionName)
}
