package tui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxDetailWidth bounds the echoed subprocess line under the spinner.
const maxDetailWidth = 96

type (
	detailMsg string
	finishMsg string
)

type spinnerModel struct {
	spin   spinner.Model
	label  string
	detail string
	final  string
}

func newSpinnerModel(label string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = infoStyle
	return spinnerModel{spin: sp, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailMsg:
		m.detail = truncate(string(msg), maxDetailWidth)
		return m, nil
	case finishMsg:
		m.final = string(msg)
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.final != "" {
		return m.final + "\n"
	}
	view := m.spin.View() + " " + m.label
	if m.detail != "" {
		view += "\n  " + Dim(m.detail)
	}
	return view
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// Spinner is a runner.Progress backed by a bubbletea program. It never reads
// input, so Ctrl+C reaches the process as a signal and cancels the command.
type Spinner struct {
	out     io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewSpinner creates a Spinner rendering to out.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

func (s *Spinner) Start(label string) {
	s.program = tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		_, _ = s.program.Run()
	}()
}

func (s *Spinner) Update(line string) {
	if s.program != nil {
		s.program.Send(detailMsg(line))
	}
}

func (s *Spinner) Succeed(msg string) { s.finish(Success(msg)) }
func (s *Spinner) Fail(msg string)    { s.finish(Failure(msg)) }

// finish prints the final line and waits for the program to restore the
// terminal before the caller writes anything else.
func (s *Spinner) finish(line string) {
	if s.program == nil {
		return
	}
	s.program.Send(finishMsg(line))
	<-s.done
	s.program = nil
}
