package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"devai/chat"
	"devai/config"
	"devai/git"
	"devai/internal/driver"
	"devai/internal/materialize"
	"devai/internal/project"
	"devai/internal/runner"
	"devai/llm"
	"devai/logging"
	"devai/paths"
	"devai/tui"
	"devai/workspace"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "devai",
	Short: "devai is a terminal assistant that turns requests into project files",
	Long: `devai is a terminal-based, AI-driven development assistant written in Go.
Describe what you need and it asks the model for code, writes every file the
reply declares and installs the modules the reply lists. A request containing
"create a" first generates a new app, then builds it step by step from a plan.
Submit an empty line to quit.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context())
	},
}

func runSession(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// Detect workspace
	workspacePath, err := workspace.DetectWorkspace(cwd)
	if err != nil {
		return fmt.Errorf("failed to detect workspace: %w", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(workspacePath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := paths.EnsureUserDir(); err != nil {
		return err
	}
	logPath, err := paths.LogPath()
	if err != nil {
		return err
	}
	logger, logFile, err := logging.Open(logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	adapter, err := llm.CreateAdapter(cfg.Model, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create model adapter: %w", err)
	}

	historyDir := ""
	if cfg.History {
		if historyDir, err = paths.HistoryDir(); err != nil {
			return err
		}
	}
	session := chat.NewSession(llm.SystemPrompt, historyDir)

	run := runner.New(tui.NewProgress(os.Stdout), logger)
	d := driver.New(adapter, tui.NewPrompter(os.Stdin, os.Stdout)).
		WithSession(session).
		WithFiles(materialize.NewOS(cwd, logger)).
		WithProject(
			project.NewScaffolder(run, cfg.ScaffoldCommand, cfg.ScaffoldArgs),
			project.NewInstaller(run, cfg.PackageManager),
		).
		WithWorkspace(cwd).
		WithOutput(os.Stdout).
		WithLogger(logger).
		WithStreaming(cfg.Stream).
		WithCreationPhrase(cfg.CreationPhrase)
	if cfg.AutoCommit {
		d.WithSnapshots(git.Snapshot)
	}

	fmt.Println(tui.Title("devai") + " " + tui.Dim(cfg.Model))
	if !adapter.IsAvailable() {
		fmt.Println(tui.Failure(fmt.Sprintf("%s does not answer yet; requests may fail", cfg.Model)))
	}
	if historyDir != "" {
		fmt.Println(tui.Dim("session " + session.ID()))
	}

	return d.Run(ctx)
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the running
// command or model request.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}
