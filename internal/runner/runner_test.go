package runner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// recorder is a Progress that keeps every call.
type recorder struct {
	mu      sync.Mutex
	label   string
	lines   []string
	succeed string
	fail    string
}

func (r *recorder) Start(label string) { r.label = label }

func (r *recorder) Update(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) Succeed(msg string) { r.succeed = msg }
func (r *recorder) Fail(msg string)    { r.fail = msg }

func newTestRunner() (*Runner, *recorder) {
	rec := &recorder{}
	return New(func() Progress { return rec }, nil), rec
}

func TestRun_ExitCode(t *testing.T) {
	tests := []struct {
		name       string
		script     string
		expectCode int
	}{
		{"exit 0", "exit 0", 0},
		{"exit 1", "exit 1", 1},
		{"exit 42", "exit 42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newTestRunner()
			err := r.Run(context.Background(), "sh", []string{"-c", tt.script}, RunOpts{Label: "test"})

			if tt.expectCode == 0 {
				if err != nil {
					t.Fatalf("Run returned error: %v", err)
				}
				if rec.succeed != "test" {
					t.Errorf("succeed = %q, want %q", rec.succeed, "test")
				}
				return
			}

			var pe *ProcessError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProcessError, got %v", err)
			}
			if pe.ExitCode != tt.expectCode {
				t.Errorf("exit code = %d, want %d", pe.ExitCode, tt.expectCode)
			}
			if !strings.Contains(err.Error(), "code") {
				t.Errorf("error %q should mention the exit code", err.Error())
			}
			if rec.fail == "" {
				t.Error("expected progress to be failed")
			}
		})
	}
}

func TestRun_StreamsBothStreams(t *testing.T) {
	r, rec := newTestRunner()
	err := r.Run(context.Background(), "sh", []string{"-c", "echo one; echo two >&2; echo; echo three"}, RunOpts{})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	got := strings.Join(rec.lines, ",")
	for _, want := range []string{"one", "two", "three"} {
		if !strings.Contains(got, want) {
			t.Errorf("lines = %q, want to contain %q", got, want)
		}
	}
	if len(rec.lines) != 3 {
		t.Errorf("expected blank lines to be skipped, got %d lines: %q", len(rec.lines), rec.lines)
	}
	if rec.label != "sh -c echo one; echo two >&2; echo; echo three" {
		t.Errorf("default label = %q", rec.label)
	}
}

func TestRun_Dir(t *testing.T) {
	dir := t.TempDir()
	r, rec := newTestRunner()

	if err := r.Run(context.Background(), "pwd", nil, RunOpts{Dir: dir}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(rec.lines) != 1 {
		t.Fatalf("expected one line, got %q", rec.lines)
	}

	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(rec.lines[0])
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	r, rec := newTestRunner()
	err := r.Run(context.Background(), "devai-definitely-not-a-binary", nil, RunOpts{})
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}

	var pe *ProcessError
	if errors.As(err, &pe) {
		t.Errorf("missing binary should not be a ProcessError: %v", err)
	}
	if rec.fail == "" {
		t.Error("expected progress to be failed")
	}
}

func TestRun_NilProgress(t *testing.T) {
	r := New(nil, nil)
	if err := r.Run(context.Background(), "sh", []string{"-c", "echo ok"}, RunOpts{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}
