// Package ui is the bubbletea chat front end: an API key gate when the
// configured provider has none, then the conversation screen.
package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"tasktalk/internal/chat"
	"tasktalk/internal/config"
	"tasktalk/internal/gateway"
	"tasktalk/internal/tasks"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const turnTimeout = 5 * time.Minute

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	systemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("108"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// --- Types ---

type state int

const (
	stateAPIKey state = iota
	stateLoading
	stateChat
)

type Model struct {
	gw   *gateway.Gateway
	sess *gateway.Session
	cfg  config.Config

	state    state
	keyInput textinput.Model
	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model

	waiting  bool
	pending  string
	notice   string
	err      error
	quitting bool
	width    int
	height   int
}

type sessionMsg struct {
	sess *gateway.Session
	err  error
}

type replyMsg struct {
	err error
}

func New(gw *gateway.Gateway) (Model, error) {
	cfg, err := gw.LoadConfig()
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your tasks"
	ti.Focus()

	ki := textinput.New()
	ki.Placeholder = "Paste API key"
	ki.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = userStyle

	m := Model{
		gw:       gw,
		cfg:      cfg,
		keyInput: ki,
		input:    ti,
		view:     viewport.New(80, 20),
		spin:     sp,
		state:    stateLoading,
	}
	if !cfg.HasAPIKey() {
		m.state = stateAPIKey
		m.keyInput.Focus()
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	if m.state == stateLoading {
		return tea.Batch(m.spin.Tick, m.initSession())
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.view.Width = max(msg.Width-6, 20)
		m.view.Height = max(msg.Height-10, 3)
		m.refreshTranscript()

	case sessionMsg:
		if msg.err != nil {
			m.err = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.sess = msg.sess
		m.state = stateChat
		m.refreshTranscript()
		return m, textinput.Blink

	case replyMsg:
		// Outcome is already in the transcript; errors also land in the log.
		m.waiting = false
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if m.waiting || m.state == stateLoading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd

	switch m.state {
	case stateAPIKey:
		m.keyInput, cmd = m.keyInput.Update(msg)
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
			key := strings.TrimSpace(m.keyInput.Value())
			if key == "" {
				return m, cmd
			}
			// The key lives in this process only; put it in config or .env
			// to skip this screen.
			if env := config.APIKeyEnv(m.cfg.Provider); env != "" {
				os.Setenv(env, key)
			}
			m.state = stateLoading
			return m, tea.Batch(m.spin.Tick, m.initSession())
		}

	case stateChat:
		m.input, cmd = m.input.Update(msg)
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, cmd
			}
			m.input.SetValue("")

			switch text {
			case "/exit":
				m.quitting = true
				return m, tea.Quit
			case "/clear":
				m.sess.Service.Clear()
				m.notice = "context cleared"
				m.refreshTranscript()
				return m, cmd
			case "/tasks":
				m.notice = renderTasks(m.sess.Store.Tasks())
				return m, cmd
			}

			m.notice = ""
			m.pending = text
			m.waiting = true
			return m, tea.Batch(m.spin.Tick, m.send(text))
		}
	}

	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(" tasktalk "))
	s.WriteString("\n\n")

	switch m.state {
	case stateAPIKey:
		s.WriteString(fmt.Sprintf("No API key found for provider %q.\n\n", m.cfg.Provider))
		s.WriteString(m.keyInput.View())
		s.WriteString("\n\n" + helpStyle.Render("enter: continue • esc: quit"))

	case stateLoading:
		s.WriteString(m.spin.View() + " starting session...")

	case stateChat:
		s.WriteString(m.view.View())
		s.WriteString("\n")
		if m.waiting {
			s.WriteString(userStyle.Render("You: ") + m.pending + "\n\n")
			s.WriteString(m.spin.View() + " thinking...\n")
		} else {
			if m.notice != "" {
				s.WriteString(noticeStyle.Render(m.notice) + "\n\n")
			}
			s.WriteString(m.input.View() + "\n")
		}
		s.WriteString("\n" + helpStyle.Render("enter: send • /tasks: list • /clear: reset • esc: quit"))
	}

	return docStyle.Render(s.String())
}

// --- Commands ---

func (m *Model) initSession() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		sess, err := gw.Init(context.Background())
		return sessionMsg{sess: sess, err: err}
	}
}

func (m *Model) send(text string) tea.Cmd {
	service := m.sess.Service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		_, err := service.Send(ctx, text)
		return replyMsg{err: err}
	}
}

// --- Rendering ---

func (m *Model) refreshTranscript() {
	if m.sess == nil {
		return
	}
	wrap := lipgloss.NewStyle().Width(m.view.Width)

	var b strings.Builder
	for _, turn := range m.sess.Service.DisplayTurns() {
		var line string
		switch turn.Sender {
		case chat.SenderUser:
			line = userStyle.Render("You: ") + turn.Text
		default:
			line = systemStyle.Render(turn.Text)
		}
		b.WriteString(wrap.Render(line))
		b.WriteString("\n\n")
	}
	m.view.SetContent(b.String())
	m.view.GotoBottom()
	m.pending = ""
}

func renderTasks(ts []tasks.Task) string {
	if len(ts) == 0 {
		return "no tasks yet"
	}
	var b strings.Builder
	for i, t := range ts {
		if i > 0 {
			b.WriteString("\n")
		}
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s %d. %s", mark, t.ID, t.Name)
		if t.Description != nil && *t.Description != "" {
			fmt.Fprintf(&b, " - %s", *t.Description)
		}
	}
	return b.String()
}

// --- Runner ---

// Run starts the chat TUI and blocks until it exits.
func Run(gw *gateway.Gateway) error {
	m, err := New(gw)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
