package workspace

import (
	"os"
	"path/filepath"

	"devai/paths"
)

// DetectWorkspace detects the workspace root for startPath (the working
// directory when empty). It walks up to the nearest directory holding a
// .devai directory, then to the nearest Git repository root, and otherwise
// uses startPath itself.
func DetectWorkspace(startPath string) (string, error) {
	if startPath == "" {
		pwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		startPath = pwd
	}

	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	// The user directory ~/.devai is not a workspace marker
	userDir, _ := paths.GetUserDir()

	if root := findUp(absPath, func(dir string) bool {
		marker := filepath.Join(dir, paths.DirName)
		return marker != userDir && isDir(marker)
	}); root != "" {
		return root, nil
	}

	if root := findUp(absPath, func(dir string) bool {
		_, err := os.Stat(filepath.Join(dir, ".git"))
		return err == nil
	}); root != "" {
		return root, nil
	}

	return absPath, nil
}

// findUp walks up the directory tree until match succeeds
func findUp(startPath string, match func(dir string) bool) string {
	currentPath := startPath

	for {
		if match(currentPath) {
			return currentPath
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			// Reached the root directory
			break
		}
		currentPath = parentPath
	}

	return ""
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
