package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/diogo/companion/internal/conversation"
	"github.com/diogo/companion/internal/history"
	"github.com/diogo/companion/internal/models"
	"github.com/diogo/companion/internal/onboarding"
	"github.com/diogo/companion/internal/render"
)

// lineReader reads one line of input after showing a prompt
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// linerReader provides line editing and input history for the plain prompt
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader(dataDir string) *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{
		line:        line,
		historyFile: filepath.Join(dataDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r
}

// Prompt reads a line and remembers it in the input history
func (r *linerReader) Prompt(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the input history and restores the terminal
func (r *linerReader) Close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
		_, _ = r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// plainSession is a line-based conversation on plain output streams
type plainSession struct {
	ctx    context.Context
	app    *App
	in     lineReader
	out    io.Writer
	errOut io.Writer

	printed int      // messages already shown
	topics  []string // last suggestions shown
}

// runPlain runs the onboarding flow if needed and then the prompt loop. It returns
// nil when the user leaves.
func runPlain(ctx context.Context, app *App, in lineReader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &plainSession{ctx: ctx, app: app, in: in, out: out, errOut: errOut}

	if app.Machine.State() == conversation.StateOnboarding {
		finished, err := s.onboard()
		if err != nil {
			return err
		}
		if !finished {
			return nil
		}
	}

	s.printNewMessages()
	if app.Machine.SuggestionsVisible() {
		s.showTopics()
	}
	fmt.Fprintln(s.out, dimStyle.Render("Type /help for commands, 'exit' to leave."))

	for {
		prompt := userPromptStyle.Render(app.Machine.Settings().UserName + "> ")
		input, err := s.in.Prompt(prompt)
		if err != nil {
			// Ctrl+C or EOF
			fmt.Fprintln(s.out)
			s.goodbye()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.goodbye()
			return nil
		}

		if strings.HasPrefix(input, "/") {
			if !s.handleCommand(input) {
				s.goodbye()
				return nil
			}
			continue
		}

		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(s.topics) && app.Machine.SuggestionsVisible() {
			input = s.topics[n-1]
			fmt.Fprintln(s.out, dimStyle.Render("→ "+input))
		}

		s.send(input)
	}
}

// onboard walks through the introduction pages. It reports false when the user leaves.
func (s *plainSession) onboard() (bool, error) {
	flow := onboarding.New(s.app.Machine.CompleteOnboarding)

	for !flow.Done() {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, botLabelStyle.Render(flow.Title()))
		for _, p := range flow.Paragraphs() {
			fmt.Fprintln(s.out, p)
		}

		switch flow.Step() {
		case onboarding.StepName:
			name, err := s.in.Prompt(userPromptStyle.Render("Your name: "))
			if err != nil {
				return false, nil
			}
			flow.SetName(name)
			if err := flow.Next(); err != nil {
				fmt.Fprintln(s.errOut, warningStyle.Render(err.Error()))
			}

		case onboarding.StepFeatures:
			for _, feature := range onboarding.Features {
				fmt.Fprintln(s.out, "  • "+feature)
			}
			if _, err := s.in.Prompt(dimStyle.Render("Press Enter to "+strings.ToLower(flow.Action())+" ")); err != nil {
				return false, nil
			}
			if err := flow.Complete(); err != nil {
				// The conversation can go on with the in-memory name
				s.app.Logger.Warn().Err(err).Msg("onboarding not saved")
				fmt.Fprintln(s.errOut, warningStyle.Render(err.Error()))
			}

		default:
			if _, err := s.in.Prompt(dimStyle.Render("Press Enter to "+strings.ToLower(flow.Action())+" ")); err != nil {
				return false, nil
			}
			if err := flow.Next(); err != nil {
				return false, err
			}
		}
	}
	fmt.Fprintln(s.out)
	return true, nil
}

// handleCommand runs a slash command. It reports false when the session should end.
func (s *plainSession) handleCommand(input string) bool {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit":
		return false

	case "/help":
		fmt.Fprintln(s.out, dimStyle.Render(`Commands:
  /topics            Show conversation starters
  /export [format]   Save the conversation (markdown or json)
  /mood              Show the mood of your last message
  /quit              Leave the conversation`))

	case "/topics":
		s.showTopics()

	case "/mood":
		fmt.Fprintln(s.out, sentimentLine(s.app.Machine.Sentiment()))

	case "/export":
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		format, err := history.ParseExportFormat(name)
		if err != nil {
			fmt.Fprintln(s.errOut, warningStyle.Render(err.Error()))
			return true
		}
		path, err := s.app.Transcripts.Save(transcriptOf(s.app), format)
		if err != nil {
			fmt.Fprintln(s.errOut, formatErrorMessage(err, "Export failed"))
			return true
		}
		fmt.Fprintln(s.out, successStyle.Render("✓ Conversation saved to "+path))

	default:
		fmt.Fprintln(s.errOut, warningStyle.Render("Unknown command "+fields[0]+" (try /help)"))
	}
	return true
}

// send submits one message and prints the reply
func (s *plainSession) send(text string) {
	settings := s.app.Machine.Settings()

	spin := newSpinner(s.errOut, settings.CompanionName+" is thinking")
	spin.start()

	start := time.Now()
	_, err := s.app.Machine.Submit(s.ctx, text)
	spin.stopWithError()

	if err != nil {
		if errors.Is(err, conversation.ErrEmptyMessage) {
			return
		}
		fmt.Fprintln(s.errOut, formatErrorMessage(err, "Message not sent"))
		return
	}

	s.app.Logger.Debug().Dur("elapsed", time.Since(start)).Msg("plain reply shown")
	// The user's own line is already on screen
	s.printed++
	s.printNewMessages()
	fmt.Fprintln(s.out, sentimentLine(s.app.Machine.Sentiment()))
}

// printNewMessages prints the messages appended since the last call
func (s *plainSession) printNewMessages() {
	messages := s.app.Machine.Messages()
	if s.printed > len(messages) {
		s.printed = len(messages)
	}
	for _, msg := range messages[s.printed:] {
		s.printMessage(msg)
	}
	s.printed = len(messages)
}

func (s *plainSession) printMessage(msg models.Message) {
	settings := s.app.Machine.Settings()
	if msg.IsUser() {
		fmt.Fprintln(s.out, userPromptStyle.Render(settings.UserName+"> ")+msg.Text)
		return
	}

	bubbleWidth, textWidth := bubbleWidths()
	opts := render.OptionsFromConfig(s.app.Config.Markdown).WithWidth(textWidth)
	opts = opts.WithStyle(render.MarkdownStyleFor(opts.Style, settings.HighContrast))
	content := strings.TrimSpace(render.MarkdownOrPlain(msg.Text, opts))

	fmt.Fprintln(s.out, botLabelStyle.Render("✦ "+settings.CompanionName))
	fmt.Fprintln(s.out, botBubbleStyle.Width(bubbleWidth).Render(content))
}

// showTopics loads and prints numbered conversation starters
func (s *plainSession) showTopics() {
	s.topics = s.app.Topics.Load(s.ctx)
	fmt.Fprintln(s.out, dimStyle.Render("Not sure what to talk about? Try one of these:"))
	for i, topic := range s.topics {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, topic)
	}
}

func (s *plainSession) goodbye() {
	s.app.Machine.StopSpeaking()
	name := s.app.Machine.Settings().UserName
	fmt.Fprintln(s.out, dimStyle.Render("Goodbye, "+name+"!"))
}

// transcriptOf snapshots the current conversation
func transcriptOf(app *App) history.Transcript {
	settings := app.Machine.Settings()
	return history.Transcript{
		SessionID:     app.Machine.SessionID(),
		CompanionName: settings.CompanionName,
		UserName:      settings.UserName,
		CreatedAt:     time.Now(),
		Messages:      app.Machine.Messages(),
	}
}
