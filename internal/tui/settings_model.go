package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/companion/internal/models"
)

// Menu item indices for the settings overlay
const (
	menuTextToSpeech = iota
	menuFontSize
	menuHighContrast
	menuCompanionName
	menuUserName
	menuSave
	menuCancel
	menuItemCount
)

// settingsAction tells the chat model what the overlay decided
type settingsAction int

const (
	settingsNone settingsAction = iota
	settingsSave
	settingsCancel
)

// settingsModel edits a draft copy of the settings. Nothing is applied until Save.
type settingsModel struct {
	draft   models.Settings
	cursor  int
	editing bool
	input   textinput.Model
	err     error
}

func newSettingsModel(current models.Settings) settingsModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	return settingsModel{
		draft: current,
		input: ti,
	}
}

// Update handles a key press and reports whether the overlay should close
func (s settingsModel) Update(msg tea.KeyMsg) (settingsModel, tea.Cmd, settingsAction) {
	if s.editing {
		return s.updateEditing(msg)
	}

	switch msg.String() {
	case "esc":
		return s, nil, settingsCancel

	case "up", "k":
		s.cursor--
		if s.cursor < 0 {
			s.cursor = menuItemCount - 1
		}

	case "down", "j", "tab":
		s.cursor++
		if s.cursor >= menuItemCount {
			s.cursor = 0
		}

	case "left", "h":
		if s.cursor == menuFontSize {
			s.draft.FontSize = cycleFontSize(s.draft.FontSize, -1)
		}

	case "right", "l":
		if s.cursor == menuFontSize {
			s.draft.FontSize = cycleFontSize(s.draft.FontSize, 1)
		}

	case "enter", " ":
		return s.handleSelect()
	}

	return s, nil, settingsNone
}

// handleSelect handles menu item selection
func (s settingsModel) handleSelect() (settingsModel, tea.Cmd, settingsAction) {
	s.err = nil
	switch s.cursor {
	case menuTextToSpeech:
		s.draft.TextToSpeech = !s.draft.TextToSpeech
	case menuFontSize:
		s.draft.FontSize = cycleFontSize(s.draft.FontSize, 1)
	case menuHighContrast:
		s.draft.HighContrast = !s.draft.HighContrast
	case menuCompanionName:
		return s.startEditing(s.draft.CompanionName, models.MaxCompanionNameLength)
	case menuUserName:
		return s.startEditing(s.draft.UserName, models.MaxUserNameLength)
	case menuSave:
		return s, nil, settingsSave
	case menuCancel:
		return s, nil, settingsCancel
	}
	return s, nil, settingsNone
}

func (s settingsModel) startEditing(value string, limit int) (settingsModel, tea.Cmd, settingsAction) {
	s.editing = true
	s.input.CharLimit = limit
	s.input.SetValue(value)
	s.input.CursorEnd()
	return s, s.input.Focus(), settingsNone
}

func (s settingsModel) updateEditing(msg tea.KeyMsg) (settingsModel, tea.Cmd, settingsAction) {
	switch msg.String() {
	case "esc":
		s.editing = false
		s.input.Blur()
		return s, nil, settingsNone

	case "enter":
		value := strings.TrimSpace(s.input.Value())
		switch s.cursor {
		case menuCompanionName:
			s.draft.CompanionName = value
		case menuUserName:
			s.draft.UserName = value
		}
		s.editing = false
		s.input.Blur()
		return s, nil, settingsNone
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, settingsNone
}

// cycleFontSize steps through the font sizes, wrapping at both ends
func cycleFontSize(current models.FontSize, step int) models.FontSize {
	sizes := models.FontSizes()
	idx := 0
	for i, fs := range sizes {
		if fs == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(sizes)) % len(sizes)
	return sizes[idx]
}

// View renders the overlay
func (s settingsModel) View(width int) string {
	panelWidth := width - 4
	if panelWidth > 64 {
		panelWidth = 64
	}

	header := configHeaderStyle.Width(panelWidth).Render("⚙ Settings")

	rows := []struct {
		item  int
		label string
		value string
	}{
		{menuTextToSpeech, "Text to Speech", renderBoolValue(s.draft.TextToSpeech)},
		{menuFontSize, "Font Size", configValueStyle.Render("◂ " + string(s.draft.FontSize) + " ▸")},
		{menuHighContrast, "High Contrast", renderBoolValue(s.draft.HighContrast)},
		{menuCompanionName, "Companion Name", s.renderName(menuCompanionName, s.draft.CompanionName, models.MaxCompanionNameLength)},
		{menuUserName, "Your Name", s.renderName(menuUserName, s.draft.UserName, models.MaxUserNameLength)},
	}

	var items []string
	items = append(items, configSectionTitleStyle.Render("Accessibility & Personalization"), "")
	for _, r := range rows {
		cursor, style := s.cursorFor(r.item)
		pad := 18 - utf8.RuneCountInString(r.label)
		items = append(items, fmt.Sprintf("%s%s%s%s",
			cursor,
			style.Render(r.label),
			strings.Repeat(" ", pad),
			r.value,
		))
	}

	items = append(items, "")
	cursor, style := s.cursorFor(menuSave)
	items = append(items, cursor+style.Render("Save"))
	cursor, style = s.cursorFor(menuCancel)
	items = append(items, cursor+style.Render("Cancel"))

	if s.err != nil {
		items = append(items, "", errorStyle.Render("✗ "+s.err.Error()))
	}

	panel := configPanelStyle.Width(panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, items...))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panel,
		s.renderStatusBar(panelWidth),
	)
}

func (s settingsModel) cursorFor(item int) (string, lipgloss.Style) {
	if s.cursor == item {
		return configCursorStyle.Render("▸ "), configMenuSelectedStyle
	}
	return "  ", configMenuItemStyle
}

func (s settingsModel) renderName(item int, value string, limit int) string {
	if s.editing && s.cursor == item {
		return s.input.View()
	}
	return configValueStyle.Render(fmt.Sprintf("%s (%d/%d)", value, utf8.RuneCountInString(value), limit))
}

// renderStatusBar renders the bottom status bar
func (s settingsModel) renderStatusBar(width int) string {
	if s.editing {
		return configStatusBarStyle.Width(width).Render(renderShortcuts([]shortcut{
			{"Enter", "Confirm"},
			{"Esc", "Discard"},
		}))
	}
	return configStatusBarStyle.Width(width).Render(renderShortcuts([]shortcut{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"←→", "Font Size"},
		{"Esc", "Close"},
	}))
}

// renderBoolValue renders a boolean value with appropriate styling
func renderBoolValue(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

// shortcut is one key hint of a status bar
type shortcut struct {
	key  string
	desc string
}

func renderShortcuts(shortcuts []shortcut) string {
	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}
	return strings.Join(items, "  │  ")
}
