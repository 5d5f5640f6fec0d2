// Package tui implements the interactive chat session over a query
// service using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/epistle-labs/epistle/internal/core/ports/driving"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// exampleQuestions is shown before the first question is asked.
var exampleQuestions = []string{
	"How many emails did I receive?",
	"Summarize the emails about invoices.",
	"Who asked me to schedule a meeting?",
}

// answerMsg carries the result of an asynchronous Answer call.
type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	service    driving.QueryService
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript string
	docCount   int
	thinking   bool
	ready      bool
}

// New creates a chat model over the given query service. docCount is
// shown in the header so the user knows what the session covers.
func New(service driving.QueryService, docCount int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your email (quit to exit)"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		service:  service,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		docCount: docCount,
	}
}

// Run starts the interactive session and blocks until the user quits.
func Run(service driving.QueryService, docCount int) error {
	_, err := tea.NewProgram(New(service, docCount)).Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 3 + ih // header, doc count, status line
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.thinking {
			q := strings.TrimSpace(m.input.Value())
			switch q {
			case "":
				return m, nil
			case "quit", "exit", "q":
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.thinking = true
			return m, tea.Batch(m.spinner.Tick, ask(m.service, q))
		}

	case answerMsg:
		m.thinking = false
		m.transcript += questionStyle.Render("You: "+msg.question) + "\n"
		if msg.err != nil {
			m.transcript += errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
		} else {
			m.transcript += "Assistant: " + msg.answer + "\n\n"
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.thinking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := titleStyle.Render("Email Assistant")
	count := dimStyle.Render(fmt.Sprintf("%d emails indexed", m.docCount))

	status := dimStyle.Render("enter to ask, quit to exit")
	if m.thinking {
		status = m.spinner.View() + " thinking..."
	}

	return header + "\n" + count + "\n" +
		m.viewport.View() + "\n" +
		inputBoxStyle.Render(m.input.View()) + "\n" +
		status
}

// ask runs the Answer call off the update loop.
func ask(service driving.QueryService, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := service.Answer(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// refreshTranscript repaints the viewport and keeps it scrolled to the
// latest exchange.
func (m *Model) refreshTranscript() {
	content := m.transcript
	if content == "" {
		var b strings.Builder
		b.WriteString(dimStyle.Render("Try one of these:") + "\n")
		for _, q := range exampleQuestions {
			b.WriteString(dimStyle.Render("  - "+q) + "\n")
		}
		content = b.String()
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}
