// Package project builds the scaffold and install commands for a generated
// app and runs them through a CommandRunner.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"devai/internal/response"
	"devai/internal/runner"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AppNamePlaceholder is replaced by the app name in scaffold arguments.
const AppNamePlaceholder = "{name}"

// DefaultScaffoldCommand and DefaultScaffoldArgs create a Next.js app.
var (
	DefaultScaffoldCommand = "npx"
	DefaultScaffoldArgs    = []string{
		"create-next-app@latest", AppNamePlaceholder,
		"--ts", "--tailwind", "--eslint", "--app", "--src-dir", "--use-npm",
		"--import-alias", "@/*",
	}
)

// ErrNothingToInstall is returned by Install for an empty dependency list.
var ErrNothingToInstall = errors.New("no modules found to install")

// ErrEmptyAppName is returned by NormalizeAppName for blank input.
var ErrEmptyAppName = errors.New("app name is required")

// NormalizeAppName trims and lower-cases name and replaces whitespace with
// dashes; npm rejects package names with capitals or spaces.
func NormalizeAppName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyAppName
	}
	name = cases.Lower(language.Und).String(name)
	return strings.Join(strings.Fields(name), "-"), nil
}

// Scaffolder creates a new project with an external generator
type Scaffolder struct {
	runner  runner.CommandRunner
	command string
	args    []string
}

// NewScaffolder creates a Scaffolder. Empty command or args fall back to the
// Next.js defaults.
func NewScaffolder(r runner.CommandRunner, command string, args []string) *Scaffolder {
	if command == "" {
		command = DefaultScaffoldCommand
	}
	if len(args) == 0 {
		args = DefaultScaffoldArgs
	}
	return &Scaffolder{runner: r, command: command, args: args}
}

// Args returns the generator arguments for appName.
func (s *Scaffolder) Args(appName string) []string {
	out := make([]string, len(s.args))
	for i, a := range s.args {
		out[i] = strings.ReplaceAll(a, AppNamePlaceholder, appName)
	}
	return out
}

// Create runs the generator for appName in the working directory.
func (s *Scaffolder) Create(ctx context.Context, appName string) error {
	err := s.runner.Run(ctx, s.command, s.Args(appName), runner.RunOpts{
		Label: fmt.Sprintf("Creating app '%s'...", appName),
	})
	if err != nil {
		return fmt.Errorf("failed to create app %s: %w", appName, err)
	}
	return nil
}

// Installer installs dependencies with a package manager
type Installer struct {
	runner         runner.CommandRunner
	packageManager string
}

// NewInstaller creates an Installer; an empty packageManager means npm.
func NewInstaller(r runner.CommandRunner, packageManager string) *Installer {
	if packageManager == "" {
		packageManager = "npm"
	}
	return &Installer{runner: r, packageManager: packageManager}
}

// Args returns the package manager arguments for specs.
func (i *Installer) Args(specs []response.DependencySpec) []string {
	return append([]string{"install"}, response.InstallArgs(specs)...)
}

// Install runs "<pm> install <spec>..." in dir, which may be empty.
func (i *Installer) Install(ctx context.Context, dir string, specs []response.DependencySpec) error {
	if len(specs) == 0 {
		return ErrNothingToInstall
	}

	names := make([]string, len(specs))
	for n, s := range specs {
		names[n] = s.Name
	}

	err := i.runner.Run(ctx, i.packageManager, i.Args(specs), runner.RunOpts{
		Dir:   dir,
		Label: fmt.Sprintf("Installing modules: %s...", strings.Join(names, ", ")),
	})
	if err != nil {
		return fmt.Errorf("failed to install modules: %w", err)
	}
	return nil
}
