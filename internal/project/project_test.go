package project

import (
	"context"
	"errors"
	"testing"

	"devai/internal/response"
	"devai/internal/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
	opts runner.RunOpts
}

type fakeRunner struct {
	calls []call
	err   error
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, opts runner.RunOpts) error {
	f.calls = append(f.calls, call{name: name, args: args, opts: opts})
	return f.err
}

func TestNormalizeAppName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"todo", "todo"},
		{"  Weather App ", "weather-app"},
		{"MyApp", "myapp"},
	}
	for _, tt := range tests {
		got, err := NormalizeAppName(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeAppName("   ")
	assert.ErrorIs(t, err, ErrEmptyAppName)
}

func TestScaffolder_Create(t *testing.T) {
	fr := &fakeRunner{}
	s := NewScaffolder(fr, "", nil)

	require.NoError(t, s.Create(context.Background(), "demo"))

	require.Len(t, fr.calls, 1)
	assert.Equal(t, "npx", fr.calls[0].name)
	assert.Equal(t, []string{
		"create-next-app@latest", "demo",
		"--ts", "--tailwind", "--eslint", "--app", "--src-dir", "--use-npm",
		"--import-alias", "@/*",
	}, fr.calls[0].args)
	assert.Contains(t, fr.calls[0].opts.Label, "demo")
}

func TestScaffolder_CustomCommand(t *testing.T) {
	fr := &fakeRunner{}
	s := NewScaffolder(fr, "npm", []string{"create", "vite@latest", "{name}", "--", "--template", "react-ts"})

	assert.Equal(t, []string{"create", "vite@latest", "shop", "--", "--template", "react-ts"}, s.Args("shop"))
	// The configured args are templates and must not be mutated.
	assert.Equal(t, []string{"create", "vite@latest", "blog", "--", "--template", "react-ts"}, s.Args("blog"))
}

func TestScaffolder_PropagatesProcessError(t *testing.T) {
	fr := &fakeRunner{err: &runner.ProcessError{Command: "npx", ExitCode: 1}}
	s := NewScaffolder(fr, "", nil)

	err := s.Create(context.Background(), "demo")

	var pe *runner.ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.ExitCode)
}

func TestInstaller_Install(t *testing.T) {
	fr := &fakeRunner{}
	i := NewInstaller(fr, "")

	err := i.Install(context.Background(), "demo", []response.DependencySpec{
		{Name: "axios", Version: "^1.0.0"},
		{Name: "zod"},
	})

	require.NoError(t, err)
	require.Len(t, fr.calls, 1)
	assert.Equal(t, "npm", fr.calls[0].name)
	assert.Equal(t, []string{"install", "axios@^1.0.0", "zod"}, fr.calls[0].args)
	assert.Equal(t, "demo", fr.calls[0].opts.Dir)
	assert.Equal(t, "Installing modules: axios, zod...", fr.calls[0].opts.Label)
}

func TestInstaller_Empty(t *testing.T) {
	fr := &fakeRunner{}
	i := NewInstaller(fr, "pnpm")

	err := i.Install(context.Background(), "", nil)

	assert.ErrorIs(t, err, ErrNothingToInstall)
	assert.Empty(t, fr.calls)
}
