package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/companion/internal/avatar"
	"github.com/diogo/companion/internal/conversation"
	"github.com/diogo/companion/internal/history"
	"github.com/diogo/companion/internal/models"
	"github.com/diogo/companion/internal/onboarding"
	"github.com/diogo/companion/internal/render"
	"github.com/diogo/companion/internal/speech"
	"github.com/diogo/companion/internal/topics"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// refreshMsg is sent when a collaborator changed state outside the update loop
	refreshMsg struct{}

	topicsLoadedMsg struct {
		topics []string
	}
	replyMsg struct {
		reply models.Message
		err   error
	}
	exportedMsg struct {
		path string
		err  error
	}
	copiedMsg struct {
		announce bool
		err      error
	}
	// feedbackClearMsg is sent to clear the notice line
	feedbackClearMsg struct{}
)

// Layout constants
const (
	avatarWidth     = 26
	headerHeight    = 3
	inputHeight     = 5
	statusHeight    = 1
	noticeHeight    = 1
	feedbackTimeout = 3 * time.Second
	eventBuffer     = 32
)

// Options are the collaborators of the chat program. Machine is required; the rest may
// be nil and the matching feature is hidden.
type Options struct {
	Context     context.Context
	Machine     *conversation.Machine
	Topics      *topics.Provider
	Recognizer  *speech.Recognizer
	Synthesizer *speech.Synthesizer
	Animator    *avatar.Animator
	Transcripts *history.Store
	Markdown    render.Options
	Theme       string

	// CopyToClipboard copies every reply as it arrives
	CopyToClipboard bool
	Clipboard       func(string) error
	Logger          zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	ctx         context.Context
	machine     *conversation.Machine
	topics      *topics.Provider
	recognizer  *speech.Recognizer
	synthesizer *speech.Synthesizer
	animator    *avatar.Animator
	transcripts *history.Store
	markdown    render.Options
	mdStyle     string
	theme       string
	autoCopy    bool
	clipboard   func(string) error
	logger      zerolog.Logger
	events      chan tea.Msg

	// UI components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	nameInput textinput.Model
	flow      *onboarding.Flow

	// Settings overlay
	settings     settingsModel
	showSettings bool
	applied      models.Settings

	// State
	suggestions    []string
	lastTranscript string
	voiceErr       error
	loading        bool
	ready          bool
	err            error
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewModel creates the companion TUI model and subscribes to its collaborators
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}

	events := make(chan tea.Msg, eventBuffer)
	push := func() {
		select {
		case events <- refreshMsg{}:
		default:
		}
	}
	opts.Machine.OnChange(push)
	if opts.Recognizer != nil {
		opts.Recognizer.OnChange(push)
	}
	if opts.Synthesizer != nil {
		opts.Synthesizer.OnChange(push)
	}
	if opts.Animator != nil {
		opts.Animator.OnChange(func(models.Animation) { push() })
	}

	// Create textarea for input
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ni := textinput.New()
	ni.Placeholder = "Your name"
	ni.CharLimit = models.MaxUserNameLength
	ni.Prompt = ""

	s := spinner.New()
	s.Spinner = spinner.Points

	m := Model{
		ctx:         ctx,
		machine:     opts.Machine,
		topics:      opts.Topics,
		recognizer:  opts.Recognizer,
		synthesizer: opts.Synthesizer,
		animator:    opts.Animator,
		transcripts: opts.Transcripts,
		markdown:    opts.Markdown,
		mdStyle:     opts.Markdown.Style,
		theme:       opts.Theme,
		autoCopy:    opts.CopyToClipboard,
		clipboard:   clip,
		logger:      opts.Logger.With().Str("component", "tui").Logger(),
		events:      events,
		textarea:    ta,
		spinner:     s,
		nameInput:   ni,
		flow:        onboarding.New(opts.Machine.CompleteOnboarding),
	}
	m.applySettings(opts.Machine.Settings())
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.waitForEvent(),
		m.loadTopics(),
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// clearFeedback returns a command that clears the notice after a delay
func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// waitForEvent blocks until a collaborator reports a change
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m Model) loadTopics() tea.Cmd {
	if m.topics == nil {
		return nil
	}
	provider, ctx := m.topics, m.ctx
	return func() tea.Msg {
		return topicsLoadedMsg{topics: provider.Load(ctx)}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.updateViewport()
		return m, nil

	case refreshMsg:
		m.syncTranscript()
		m.syncSettings()
		m.layout()
		m.updateViewport()
		return m, m.waitForEvent()

	case topicsLoadedMsg:
		m.suggestions = msg.topics
		m.layout()
		return m, nil

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else if m.autoCopy {
			cmds = append(cmds, m.copyText(msg.reply.Text, false))
		}
		m.layout()
		m.updateViewport()
		m.viewport.GotoBottom()

	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.notice = "Transcript saved to " + msg.path
		return m, clearFeedback(feedbackTimeout)

	case copiedMsg:
		switch {
		case msg.err != nil:
			m.notice = "Could not copy to clipboard: " + msg.err.Error()
		case msg.announce:
			m.notice = "Copied the last reply to the clipboard"
		default:
			return m, nil
		}
		return m, clearFeedback(feedbackTimeout)

	case feedbackClearMsg:
		m.notice = ""
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.showSettings {
			return m.updateSettings(msg)
		}
		if m.machine.State() == conversation.StateOnboarding {
			return m.updateOnboarding(msg)
		}
		return m.updateChat(msg)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateOnboarding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.advanceOnboarding()
	}

	if m.flow.Step() != onboarding.StepName {
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	m.flow.SetName(m.nameInput.Value())
	return m, cmd
}

func (m Model) advanceOnboarding() (tea.Model, tea.Cmd) {
	m.err = nil
	if m.flow.Step() == onboarding.StepFeatures {
		if err := m.flow.Complete(); err != nil {
			m.err = err
		}
		m.syncSettings()
		m.layout()
		m.updateViewport()
		return m, m.textarea.Focus()
	}

	if err := m.flow.Next(); err != nil {
		m.err = err
		return m, nil
	}
	if m.flow.Step() == onboarding.StepName {
		return m, m.nameInput.Focus()
	}
	m.nameInput.Blur()
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch key := msg.String(); key {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.recognizer != nil && m.recognizer.Listening() {
			m.recognizer.Stop()
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+o":
		return m.openSettings()

	case "ctrl+r":
		return m.toggleListening()

	case "ctrl+s":
		m.machine.StopSpeaking()
		return m, nil

	case "ctrl+y":
		reply, ok := m.machine.LastReply()
		if !ok {
			m.notice = "Nothing to copy yet"
			return m, clearFeedback(feedbackTimeout)
		}
		return m, m.copyText(reply.Text, true)

	case "enter":
		if m.loading {
			return m, nil
		}
		return m.handleInput(strings.TrimSpace(m.textarea.Value()))

	default:
		if idx, ok := m.suggestionIndex(key); ok {
			return m.send(m.suggestions[idx])
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput routes slash commands and sends everything else
func (m Model) handleInput(input string) (tea.Model, tea.Cmd) {
	switch {
	case input == "":
		return m, nil

	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit

	case input == "/settings":
		m.textarea.Reset()
		return m.openSettings()

	case input == "/export" || strings.HasPrefix(input, "/export "):
		m.textarea.Reset()
		format, err := history.ParseExportFormat(strings.TrimSpace(strings.TrimPrefix(input, "/export")))
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.exportTranscript(format)
	}

	return m.send(input)
}

// send starts a turn and resolves it in the background
func (m Model) send(text string) (tea.Model, tea.Cmd) {
	if m.recognizer != nil && m.recognizer.Listening() {
		m.recognizer.Stop()
	}

	turn, err := m.machine.Begin(text)
	if err != nil {
		if !errors.Is(err, conversation.ErrEmptyMessage) {
			m.err = err
		}
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.err = nil
	m.animationFrame = 0
	m.layout()
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.resolve(turn),
		m.spinner.Tick,
		animationTick(),
	)
}

func (m Model) resolve(turn *conversation.Turn) tea.Cmd {
	machine, ctx := m.machine, m.ctx
	return func() tea.Msg {
		reply, err := machine.Resolve(ctx, turn)
		return replyMsg{reply: reply, err: err}
	}
}

// suggestionIndex maps a digit key to a starter while the input is empty
func (m Model) suggestionIndex(key string) (int, bool) {
	if m.loading || m.textarea.Value() != "" || !m.suggestionsShown() {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(m.suggestions) {
		return 0, false
	}
	return n - 1, true
}

func (m Model) suggestionsShown() bool {
	return len(m.suggestions) > 0 && m.machine.SuggestionsVisible()
}

func (m Model) toggleListening() (tea.Model, tea.Cmd) {
	if m.recognizer == nil || !m.recognizer.Supported() {
		m.notice = "Voice input is not available on this system"
		return m, clearFeedback(feedbackTimeout)
	}
	if m.recognizer.Listening() {
		m.recognizer.Stop()
		return m, nil
	}
	if err := m.recognizer.Start(); err != nil {
		m.err = err
		return m, nil
	}
	m.lastTranscript = ""
	return m, nil
}

// syncTranscript copies a new voice transcript into the input
func (m *Model) syncTranscript() {
	if m.recognizer == nil {
		return
	}
	transcript := m.recognizer.Transcript()
	if transcript != "" && transcript != m.lastTranscript && !m.loading {
		m.textarea.SetValue(transcript)
		m.textarea.CursorEnd()
	}
	m.lastTranscript = transcript

	if err := m.recognizer.Err(); err != nil && err != m.voiceErr {
		m.err = err
	}
	m.voiceErr = m.recognizer.Err()
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.settings = newSettingsModel(m.machine.Settings())
	m.showSettings = true
	m.textarea.Blur()
	return m, nil
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	var action settingsAction
	m.settings, cmd, action = m.settings.Update(msg)

	switch action {
	case settingsSave:
		if err := m.machine.SaveSettings(m.settings.draft); err != nil {
			m.settings.err = err
			return m, nil
		}
		m.showSettings = false
		m.syncSettings()
		m.layout()
		m.updateViewport()
		m.notice = "Settings saved"
		return m, tea.Batch(m.textarea.Focus(), clearFeedback(feedbackTimeout))

	case settingsCancel:
		m.showSettings = false
		return m, m.textarea.Focus()
	}

	return m, cmd
}

// syncSettings re-applies the theme when the active settings changed
func (m *Model) syncSettings() {
	if s := m.machine.Settings(); s != m.applied {
		m.applySettings(s)
	}
}

func (m *Model) applySettings(s models.Settings) {
	m.applied = s
	ApplyTheme(render.ThemeFor(m.theme, s.HighContrast))
	m.markdown = m.markdown.WithStyle(render.MarkdownStyleFor(m.mdStyle, s.HighContrast))

	m.textarea.FocusedStyle.CursorLine = lipgloss.NewStyle()
	m.textarea.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	m.textarea.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	m.textarea.BlurredStyle = m.textarea.FocusedStyle
	m.nameInput.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	m.nameInput.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	m.spinner.Style = loadingStyle
}

func (m Model) copyText(text string, announce bool) tea.Cmd {
	clip := m.clipboard
	return func() tea.Msg {
		return copiedMsg{announce: announce, err: clip(text)}
	}
}

func (m Model) exportTranscript(format history.ExportFormat) tea.Cmd {
	if m.transcripts == nil {
		return func() tea.Msg {
			return exportedMsg{err: fmt.Errorf("transcript export is not configured")}
		}
	}
	s := m.machine.Settings()
	t := history.Transcript{
		SessionID:     m.machine.SessionID(),
		CompanionName: s.CompanionName,
		UserName:      s.UserName,
		CreatedAt:     time.Now(),
		Messages:      m.machine.Messages(),
	}
	store, logger := m.transcripts, m.logger
	return func() tea.Msg {
		path, err := store.Save(t, format)
		if err != nil {
			logger.Error().Err(err).Msg("failed to export transcript")
		}
		return exportedMsg{path: path, err: err}
	}
}

// layout sizes the viewport and the input from the window and the visible panels
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	contentWidth := m.width - 2

	suggestionsHeight := 0
	if m.suggestionsShown() {
		suggestionsHeight = len(m.suggestions) + 3
	}

	// Messages panel border takes two rows
	vpHeight := m.height - headerHeight - inputHeight - statusHeight - noticeHeight - suggestionsHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := contentWidth - avatarWidth - 4
	if vpWidth < 20 {
		vpWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 6)
	m.nameInput.Width = models.MaxUserNameLength + 2
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	s := m.machine.Settings()
	bubbleWidth := render.BubbleWidth(s.FontSize, m.viewport.Width)
	padding := render.BubblePadding(s.FontSize) + 1
	spacing := strings.Repeat("\n", render.LineSpacing(s.FontSize))

	textWidth := bubbleWidth - 2*padding - 2
	if textWidth < 10 {
		textWidth = 10
	}

	var content strings.Builder
	for i, msg := range m.machine.Messages() {
		if i > 0 {
			content.WriteString(spacing)
		}

		stamp := hintStyle.Render("  " + msg.Timestamp.Format("15:04"))
		if msg.IsUser() {
			label := userLabelStyle.Render("⬤ "+s.UserName) + stamp
			bubble := userBubbleStyle.Width(bubbleWidth).Padding(0, padding).Render(msg.Text)
			block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
			content.WriteString(lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block))
		} else {
			label := botLabelStyle.Render("✦ "+s.CompanionName) + stamp
			rendered := render.MarkdownOrPlain(msg.Text, m.markdown.WithWidth(textWidth))
			bubble := botBubbleStyle.Width(bubbleWidth).Padding(0, padding).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.machine.State() == conversation.StateOnboarding {
		return m.renderOnboarding()
	}

	if m.showSettings {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.settings.View(m.width))
	}

	var sections []string
	contentWidth := m.width - 2

	sections = append(sections, m.renderHeader(contentWidth))

	var messagesContent string
	if len(m.machine.Messages()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth - avatarWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderAvatar(m.viewport.Height),
		messagesPanel,
	))

	if m.suggestionsShown() {
		sections = append(sections, m.renderSuggestions(contentWidth))
	}

	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		label := inputLabelStyle.Render("You")
		if m.recognizer != nil && m.recognizer.Listening() {
			label += listeningStyle.Render("🎤 Listening...")
		}
		inputContent = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	switch {
	case m.err != nil:
		sections = append(sections, FormatError(m.err))
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	default:
		sections = append(sections, "")
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	s := m.machine.Settings()
	info := avatar.SentimentInfo(m.machine.Sentiment())
	mood := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render(info.Emoji + " " + info.Label)

	parts := []string{
		titleStyle.Render("✦ " + s.CompanionName),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("Talking with " + s.UserName),
		hintStyle.Render("  •  "),
		mood,
	}
	if m.synthesizer != nil && m.synthesizer.Speaking() {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render("🔊 Speaking"))
	}

	return headerStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

// renderAvatar renders the companion face and the mood of the conversation
func (m Model) renderAvatar(height int) string {
	animation := models.AnimationIdle
	if m.animator != nil {
		animation = m.animator.Animation()
	}
	info := avatar.SentimentInfo(m.machine.Sentiment())

	face := avatarFaceStyle.Render(strings.Join(avatar.Face(animation), "\n"))
	label := moodLabelStyle.
		Foreground(lipgloss.Color(info.Color)).
		Render(info.Emoji + " " + info.Label)
	desc := hintStyle.Width(avatarWidth - 4).Render(info.Description)

	return avatarPanelStyle.
		Width(avatarWidth - 2).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Center, face, label, desc))
}

func (m Model) renderSuggestions(width int) string {
	lines := []string{hintStyle.Render("Not sure what to talk about? Try one of these:")}
	for i, topic := range m.suggestions {
		lines = append(lines, suggestionKeyStyle.Render(strconv.Itoa(i+1))+"  "+suggestionTextStyle.Render(topic))
	}
	return suggestionPanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderWelcome renders the placeholder shown before the first message
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Say hello to " + m.machine.Settings().CompanionName)
	subtitle := hintStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(lipgloss.Center, icon, title, subtitle)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderOnboarding renders the current page of the first-run flow
func (m Model) renderOnboarding() string {
	width := m.width - 4
	if width > 72 {
		width = 72
	}
	textWidth := width - 8
	body := lipgloss.NewStyle().Foreground(colorText).Width(textWidth)

	parts := []string{
		welcomeIconStyle.Render("✦"),
		welcomeTitleStyle.Render(m.flow.Title()),
	}

	paragraphs := m.flow.Paragraphs()
	switch m.flow.Step() {
	case onboarding.StepName:
		for _, p := range paragraphs {
			parts = append(parts, body.Render(p), "")
		}
		parts = append(parts, inputPanelStyle.Render(m.nameInput.View()))
	case onboarding.StepFeatures:
		parts = append(parts, body.Render(paragraphs[0]), "")
		for _, f := range onboarding.Features {
			parts = append(parts, featureStyle.Width(textWidth).Render("• "+f))
		}
		parts = append(parts, "", body.Render(paragraphs[1]))
	default:
		for i, p := range paragraphs {
			if i > 0 {
				parts = append(parts, "")
			}
			parts = append(parts, body.Render(p))
		}
	}

	button := buttonOffStyle.Render(m.flow.Action())
	if m.flow.CanAdvance() {
		button = buttonStyle.Render(m.flow.Action())
	}
	parts = append(parts, button, "", m.renderStepDots())

	if m.err != nil {
		parts = append(parts, "", FormatError(m.err))
	}

	box := welcomeStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
	bar := statusBarStyle.Render(renderShortcuts([]shortcut{
		{"Enter", m.flow.Action()},
		{"Esc", "Quit"},
	}))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, box, bar))
}

func (m Model) renderStepDots() string {
	dots := make([]string, 0, onboarding.StepCount)
	for i := 0; i < onboarding.StepCount; i++ {
		if onboarding.Step(i) == m.flow.Step() {
			dots = append(dots, stepDotOnStyle.Render("●"))
		} else {
			dots = append(dots, stepDotStyle.Render("○"))
		}
	}
	return strings.Join(dots, " ")
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)

		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	dots := ""
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots += lipgloss.NewStyle().Foreground(dotColor).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextMute).Render("○")
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + m.machine.Settings().CompanionName + " is thinking ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []shortcut{
		{"Enter", "Send"},
		{"^R", "Voice"},
		{"^S", "Stop Speaking"},
		{"^O", "Settings"},
		{"^Y", "Copy"},
		{"Esc", "Quit"},
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(renderShortcuts(shortcuts))
}

// Run starts the companion TUI and blocks until the user quits
func Run(opts Options) error {
	m := NewModel(opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
