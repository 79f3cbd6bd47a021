// Package history exports conversation transcripts to local files.
package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/companion/internal/models"
)

// ExportFormat represents the format for exporting transcripts
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "markdown", "md" and "json"
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want markdown or json)", name)
	}
}

// Extension returns the file extension for the format
func (f ExportFormat) Extension() string {
	if f == ExportFormatJSON {
		return ".json"
	}
	return ".md"
}

// Transcript is a snapshot of one conversation session
type Transcript struct {
	SessionID     string           `json:"session_id"`
	CompanionName string           `json:"companion_name"`
	UserName      string           `json:"user_name"`
	CreatedAt     time.Time        `json:"created_at"`
	Messages      []models.Message `json:"messages"`
}

// ExportMarkdown renders the transcript as Markdown
func ExportMarkdown(t Transcript) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Conversation with ")
	sb.WriteString(t.CompanionName)
	sb.WriteString("\n\n")

	sb.WriteString("**User:** ")
	sb.WriteString(t.UserName)
	sb.WriteString("\n")
	sb.WriteString("**Created:** ")
	sb.WriteString(t.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n", len(t.Messages)))
	if t.SessionID != "" {
		sb.WriteString("**Session:** ")
		sb.WriteString(t.SessionID)
		sb.WriteString("\n")
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range t.Messages {
		name := t.UserName
		if msg.Sender == models.SenderBot {
			name = t.CompanionName
		}

		sb.WriteString("## ")
		sb.WriteString(name)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportJSON renders the transcript as indented JSON
func ExportJSON(t Transcript) ([]byte, error) {
	if t.Messages == nil {
		t.Messages = []models.Message{}
	}
	return json.MarshalIndent(t, "", "  ")
}

// Export renders the transcript in the given format
func Export(t Transcript, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return ExportJSON(t)
	case ExportFormatMarkdown:
		return []byte(ExportMarkdown(t)), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
