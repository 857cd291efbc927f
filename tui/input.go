package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputPrompter asks each question with a single-line bubbletea program.
type InputPrompter struct {
	in  io.Reader
	out io.Writer
}

type inputModel struct {
	label       string
	input       textinput.Model
	value       string
	done        bool
	interrupted bool
}

func newInputModel(label string) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()

	return inputModel{label: label, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			m.interrupted = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	label := promptStyle.Render(m.label)
	switch {
	case m.done:
		return fmt.Sprintf("%s %s\n", label, m.value)
	case m.interrupted:
		return fmt.Sprintf("%s %s\n", label, Dim("(cancelled)"))
	}
	return fmt.Sprintf("%s %s", label, m.input.View())
}

// Ask runs the prompt until Enter, Ctrl+C, Esc or ctx cancellation.
func (p *InputPrompter) Ask(ctx context.Context, label string) (string, error) {
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithOutput(p.out),
		tea.WithoutSignalHandler(),
	}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}

	final, err := tea.NewProgram(newInputModel(label), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ErrInterrupted
		}
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	result, ok := final.(inputModel)
	if !ok || result.interrupted {
		return "", ErrInterrupted
	}
	return result.value, nil
}
