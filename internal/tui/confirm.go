package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Digital-Shane/season-tidy/internal/tui/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// DefaultTimeout bounds every prompt unless configured otherwise.
const DefaultTimeout = 15 * time.Second

// IsAffirmative reports whether answer is an explicit yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

type timeoutMsg struct{}

// ConfirmModel is a single yes/no question that declines on its own once the
// timeout elapses.
type ConfirmModel struct {
	prompt    string
	timeout   time.Duration
	input     textinput.Model
	theme     theme.Theme
	confirmed bool
	timedOut  bool
	done      bool
}

// NewConfirmModel creates the prompt model.
func NewConfirmModel(prompt string, timeout time.Duration, th theme.Theme) *ConfirmModel {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ti := textinput.New()
	ti.Placeholder = "y/N"
	ti.CharLimit = 8
	ti.Width = 8
	ti.Prompt = ""
	ti.Focus()

	return &ConfirmModel{
		prompt:  prompt,
		timeout: timeout,
		input:   ti,
		theme:   th,
	}
}

// Confirmed reports whether the operator answered yes.
func (m *ConfirmModel) Confirmed() bool { return m.confirmed }

// TimedOut reports whether the prompt declined because nobody answered.
func (m *ConfirmModel) TimedOut() bool { return m.timedOut }

func (m *ConfirmModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.Tick(m.timeout, func(time.Time) tea.Msg { return timeoutMsg{} }),
	)
}

func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case timeoutMsg:
		m.timedOut = true
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyCtrlJ:
			m.confirmed = IsAffirmative(m.input.Value())
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ConfirmModel) View() string {
	question := m.theme.PromptStyle().Render(m.prompt)
	if m.done {
		answer := "no"
		switch {
		case m.confirmed:
			answer = "yes"
		case m.timedOut:
			answer = "no (timed out)"
		}
		return fmt.Sprintf("%s %s\n", question, answer)
	}
	hint := m.theme.HintStyle().Render(fmt.Sprintf("declines in %s", m.timeout))
	return fmt.Sprintf("%s [y/N] %s\n%s\n", question, m.input.View(), hint)
}

// Gate asks bounded yes/no questions. A non-interactive gate declines every
// question without prompting.
type Gate struct {
	auto  bool
	in    io.Reader
	out   io.Writer
	theme theme.Theme
}

// NewGate returns a gate reading answers from in and drawing prompts on out.
// In auto mode every question is declined.
func NewGate(auto bool, in io.Reader, out io.Writer, th theme.Theme) *Gate {
	return &Gate{auto: auto, in: in, out: out, theme: th}
}

// Interactive reports whether the gate will actually prompt.
func (g *Gate) Interactive() bool {
	if g == nil || g.auto || g.in == nil {
		return false
	}
	if f, ok := g.in.(interface{ Fd() uintptr }); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return true
}

// Confirm asks prompt and waits at most timeout for an answer. Timeouts,
// interrupts, cancellation and anything but y/yes return false.
func (g *Gate) Confirm(ctx context.Context, prompt string, timeout time.Duration) bool {
	if !g.Interactive() {
		return false
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Backstop in case the program misses its own tick.
	ctx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	m := NewConfirmModel(prompt, timeout, g.theme)
	final, err := tea.NewProgram(m,
		tea.WithInput(g.in),
		tea.WithOutput(g.out),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		return false
	}
	cm, ok := final.(*ConfirmModel)
	return ok && cm.Confirmed()
}
