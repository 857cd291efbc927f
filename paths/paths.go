package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the name of both the user-level and the workspace-level
// devai directory.
const DirName = ".devai"

const configFile = "config.yaml"

// GetUserDir returns the user-level devai directory (~/.devai)
func GetUserDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, DirName), nil
}

// GetGlobalConfigPath returns the path to the global config file
func GetGlobalConfigPath() (string, error) {
	userDir, err := GetUserDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(userDir, configFile), nil
}

// LocalConfigPath returns the path to the workspace config file
func LocalConfigPath(workspacePath string) string {
	return filepath.Join(workspacePath, DirName, configFile)
}

// HistoryDir returns the directory holding session transcripts
func HistoryDir() (string, error) {
	userDir, err := GetUserDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(userDir, "history"), nil
}

// LogPath returns the path of the structured log file
func LogPath() (string, error) {
	userDir, err := GetUserDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(userDir, "devai.log"), nil
}

// EnsureUserDir creates the user directory and its history subdirectory
func EnsureUserDir() error {
	historyDir, err := HistoryDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", historyDir, err)
	}

	return nil
}
