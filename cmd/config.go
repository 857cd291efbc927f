package cmd

import (
	"fmt"
	"os"

	"devai/config"
	"devai/workspace"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage devai configuration",
	Long: `Get and set configuration values for devai.
Values are merged from ~/.devai/config.yaml, <workspace>/.devai/config.yaml,
.env and DEVAI_* environment variables; set writes the workspace file.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWorkspaceConfig()
		if err != nil {
			return err
		}

		keys := config.Keys
		if len(args) == 1 {
			keys = args
		}
		for _, key := range keys {
			value, err := cfg.Get(key)
			if err != nil {
				return fmt.Errorf("failed to get config value: %w", err)
			}
			if key == "api_key" && value != "" {
				value = "********"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		workspacePath, err := workspace.DetectWorkspace("")
		if err != nil {
			return fmt.Errorf("failed to detect workspace: %w", err)
		}

		if err := config.SetLocal(workspacePath, key, value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

func loadWorkspaceConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	workspacePath, err := workspace.DetectWorkspace(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to detect workspace: %w", err)
	}
	cfg, err := config.LoadConfig(workspacePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
