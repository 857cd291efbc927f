// Package tui holds the terminal surfaces of devai: line prompts and the
// progress indicator shown while external commands run. Interactive
// terminals get bubbletea programs; pipes and files get plain line output.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"devai/internal/runner"

	"github.com/mattn/go-isatty"
)

// ErrInterrupted is returned when the user aborts a prompt (Ctrl+C, Esc or
// end of input).
var ErrInterrupted = errors.New("prompt interrupted")

// Prompter asks the user for one line of input.
type Prompter interface {
	Ask(ctx context.Context, label string) (string, error)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewPrompter returns an interactive prompter when in is a terminal and a
// plain line reader otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if IsTerminal(in) {
		return &InputPrompter{in: in, out: out}
	}
	return NewLinePrompter(in, out)
}

// NewProgress returns a factory for the progress indicator matching out.
func NewProgress(out *os.File) func() runner.Progress {
	if IsTerminal(out) {
		return func() runner.Progress { return NewSpinner(out) }
	}
	return func() runner.Progress { return NewLineProgress(out) }
}

// LinePrompter reads answers line by line from any reader.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter. The reader is buffered once and
// shared across questions.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the next line without its line ending.
// End of input before any character is ErrInterrupted.
func (p *LinePrompter) Ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInterrupted
	}
	fmt.Fprintf(p.out, "%s ", promptStyle.Render(label))

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrInterrupted
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// LineProgress prints command progress as plain lines.
type LineProgress struct {
	out io.Writer
}

// NewLineProgress creates a LineProgress writing to out.
func NewLineProgress(out io.Writer) *LineProgress {
	return &LineProgress{out: out}
}

func (p *LineProgress) Start(label string) { fmt.Fprintln(p.out, Info(label)) }
func (p *LineProgress) Update(line string) { fmt.Fprintln(p.out, Dim("  "+line)) }
func (p *LineProgress) Succeed(msg string) { fmt.Fprintln(p.out, Success(msg)) }
func (p *LineProgress) Fail(msg string)    { fmt.Fprintln(p.out, Failure(msg)) }
