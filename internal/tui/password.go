package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("cancelled")

type promptStage int

const (
	stageEnter promptStage = iota
	stageConfirm
	stageDone
)

// PasswordModel is a masked password prompt. With Confirm set the password is
// asked twice and both entries must match.
type PasswordModel struct {
	Title     string
	Confirm   bool
	MinLength int

	stage     promptStage
	input     []rune
	first     string
	status    string
	cancelled bool
}

func NewPasswordModel(title string, confirm bool, minLength int) PasswordModel {
	return PasswordModel{Title: title, Confirm: confirm, MinLength: minLength}
}

func (m PasswordModel) Init() tea.Cmd { return nil }

func (m PasswordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, k.Runes...)
	}
	return m, nil
}

func (m PasswordModel) submit() (tea.Model, tea.Cmd) {
	value := string(m.input)
	switch m.stage {
	case stageEnter:
		if utf8.RuneCountInString(value) < m.MinLength {
			m.status = fmt.Sprintf("password must have at least %d characters", m.MinLength)
			m.input = nil
			return m, nil
		}
		if m.Confirm {
			m.first = value
			m.input = nil
			m.status = ""
			m.stage = stageConfirm
			return m, nil
		}
		m.first = value
	case stageConfirm:
		if value != m.first {
			m.status = "passwords do not match"
			m.first = ""
			m.input = nil
			m.stage = stageEnter
			return m, nil
		}
	}
	m.input = nil
	m.stage = stageDone
	return m, tea.Quit
}

func (m PasswordModel) View() string {
	if m.stage == stageDone || m.cancelled {
		return ""
	}
	label := m.Title
	if m.stage == stageConfirm {
		label = "Confirm password"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(label))
	b.WriteString(": ")
	b.WriteString(strings.Repeat("•", len(m.input)))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(warnStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("enter to submit • esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// Password returns the accepted password once the prompt finished.
func (m PasswordModel) Password() (string, error) {
	if m.cancelled || m.stage != stageDone {
		return "", ErrCancelled
	}
	return m.first, nil
}

// PromptPassword runs the prompt on the given terminal streams.
func PromptPassword(in io.Reader, out io.Writer, title string, confirm bool, minLength int) (string, error) {
	p := tea.NewProgram(NewPasswordModel(title, confirm, minLength), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return final.(PasswordModel).Password()
}
