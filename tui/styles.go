package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#874BFD"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F25D94"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Title renders the session banner.
func Title(s string) string { return titleStyle.Render(s) }

// Info renders a neutral status line.
func Info(s string) string { return infoStyle.Render(s) }

// Success renders a completed step.
func Success(s string) string { return successStyle.Render("✔ " + s) }

// Failure renders a failed step.
func Failure(s string) string { return errorStyle.Render("✖ " + s) }

// Dim renders secondary output such as subprocess lines.
func Dim(s string) string { return dimStyle.Render(s) }
