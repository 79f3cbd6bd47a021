package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FontSize is the reading size preference
type FontSize string

const (
	FontSmall      FontSize = "small"
	FontMedium     FontSize = "medium"
	FontLarge      FontSize = "large"
	FontExtraLarge FontSize = "extra-large"
)

// Name limits
const (
	MaxCompanionNameLength = 15
	MaxUserNameLength      = 20
)

// Default names
const (
	DefaultCompanionName = "Companion"
	DefaultUserName      = "Friend"
)

// FontSizes returns the accepted font sizes in display order
func FontSizes() []FontSize {
	return []FontSize{FontSmall, FontMedium, FontLarge, FontExtraLarge}
}

// ParseFontSize validates a font size name
func ParseFontSize(name string) (FontSize, error) {
	for _, fs := range FontSizes() {
		if string(fs) == name {
			return fs, nil
		}
	}
	return "", fmt.Errorf("invalid font size %q (want small, medium, large or extra-large)", name)
}

// Settings is the durable user preference record
type Settings struct {
	TextToSpeech  bool     `json:"textToSpeech"`
	FontSize      FontSize `json:"fontSize"`
	HighContrast  bool     `json:"highContrast"`
	CompanionName string   `json:"companionName"`
	UserName      string   `json:"userName"`
}

// DefaultSettings returns the settings of a first run
func DefaultSettings() Settings {
	return Settings{
		TextToSpeech:  true,
		FontSize:      FontMedium,
		HighContrast:  false,
		CompanionName: DefaultCompanionName,
		UserName:      DefaultUserName,
	}
}

// Validate checks the field constraints
func (s Settings) Validate() error {
	if _, err := ParseFontSize(string(s.FontSize)); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(s.CompanionName); n > MaxCompanionNameLength {
		return fmt.Errorf("companion name is %d characters, limit is %d", n, MaxCompanionNameLength)
	}
	if n := utf8.RuneCountInString(s.UserName); n > MaxUserNameLength {
		return fmt.Errorf("user name is %d characters, limit is %d", n, MaxUserNameLength)
	}
	return nil
}

// Normalize trims and truncates names, and fills empty or unknown values with defaults
func (s Settings) Normalize() Settings {
	s.CompanionName = truncateRunes(strings.TrimSpace(s.CompanionName), MaxCompanionNameLength)
	if s.CompanionName == "" {
		s.CompanionName = DefaultCompanionName
	}
	s.UserName = truncateRunes(strings.TrimSpace(s.UserName), MaxUserNameLength)
	if s.UserName == "" {
		s.UserName = DefaultUserName
	}
	if _, err := ParseFontSize(string(s.FontSize)); err != nil {
		s.FontSize = FontMedium
	}
	return s
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
