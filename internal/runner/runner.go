// Package runner spawns external commands and streams their output into a
// progress indicator.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"devai/logging"

	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single output line; package managers print long ones.
const maxLineSize = 1024 * 1024

// Progress receives the lifecycle of one command
type Progress interface {
	Start(label string)
	Update(line string)
	Succeed(msg string)
	Fail(msg string)
}

// ProcessError is returned when a command exits with a non-zero code
type ProcessError struct {
	Command  string
	ExitCode int
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// RunOpts holds optional parameters for a command
type RunOpts struct {
	Dir   string // working directory (optional)
	Label string // progress label; defaults to the command line
}

// CommandRunner is the interface the rest of devai runs commands through.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, opts RunOpts) error
}

// Runner runs commands with os/exec
type Runner struct {
	progress func() Progress
	logger   *slog.Logger
}

// New creates a Runner. newProgress is called once per command.
func New(newProgress func() Progress, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	if newProgress == nil {
		newProgress = func() Progress { return nopProgress{} }
	}
	return &Runner{progress: newProgress, logger: logger}
}

type nopProgress struct{}

func (nopProgress) Start(string)   {}
func (nopProgress) Update(string)  {}
func (nopProgress) Succeed(string) {}
func (nopProgress) Fail(string)    {}

// Run starts the command and blocks until it exits. Every stdout and stderr
// line is forwarded to the progress indicator as it arrives. A zero exit code
// returns nil, a non-zero one returns *ProcessError. There is no timeout; ctx
// is the only way to stop a running command.
func (r *Runner) Run(ctx context.Context, name string, args []string, opts RunOpts) error {
	commandLine := strings.TrimSpace(name + " " + strings.Join(args, " "))
	label := opts.Label
	if label == "" {
		label = commandLine
	}

	progress := r.progress()
	progress.Start(label)

	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		progress.Fail(err.Error())
		return fmt.Errorf("failed to attach stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		progress.Fail(err.Error())
		return fmt.Errorf("failed to attach stderr: %w", err)
	}

	r.logger.Info("command starting", "command", commandLine, "dir", opts.Dir)
	if err := cmd.Start(); err != nil {
		progress.Fail(fmt.Sprintf("%s could not start: %v", name, err))
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	lines := make(chan string)
	var g errgroup.Group
	g.Go(func() error { return pump(stdout, lines) })
	g.Go(func() error { return pump(stderr, lines) })

	go func() {
		// Drain errors are logged only; the exit status decides the outcome.
		if err := g.Wait(); err != nil {
			r.logger.Warn("command output truncated", "command", commandLine, "error", err)
		}
		close(lines)
	}()

	for line := range lines {
		progress.Update(line)
	}

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			pe := &ProcessError{Command: name, ExitCode: exitErr.ExitCode()}
			r.logger.Error("command failed", "command", commandLine, "exit_code", pe.ExitCode)
			progress.Fail(pe.Error())
			return pe
		}
		r.logger.Error("command failed", "command", commandLine, "error", err)
		progress.Fail(err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}

	r.logger.Info("command finished", "command", commandLine)
	progress.Succeed(label)
	return nil
}

// pump forwards non-empty lines from rd until EOF.
func pump(rd io.Reader, lines chan<- string) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines <- line
	}
	err := scanner.Err()
	if err != nil {
		// Keep reading so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, rd)
	}
	return err
}
