// Package git records materialized files as commits, using go-git so no git
// binary is needed.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var (
	// ErrNotRepository is returned when no repository contains the directory.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNothingToCommit is returned when staging left the index unchanged.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// CommitInfo represents information about a commit
type CommitInfo struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Files   []string  `json:"files"`
}

// ShortHash returns the abbreviated commit hash.
func (c *CommitInfo) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}

// Repository wraps the repository holding a directory
type Repository struct {
	repo *gogit.Repository
	root string
}

// Open finds the repository containing dir, walking up like git does.
func Open(dir string) (*Repository, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{repo: repo, root: wt.Filesystem.Root()}, nil
}

// Root returns the worktree root.
func (r *Repository) Root() string {
	return r.root
}

// relative converts a path to the slash-separated form the index uses.
func (r *Repository) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository at %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}

// StageFiles stages the specified files for commit
func (r *Repository) StageFiles(filePaths []string) ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	staged := make([]string, 0, len(filePaths))
	for _, path := range filePaths {
		rel, err := r.relative(path)
		if err != nil {
			return staged, err
		}
		if _, err := wt.Add(rel); err != nil {
			return staged, fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		staged = append(staged, rel)
	}
	return staged, nil
}

// hasStagedChanges reports whether the index differs from HEAD.
func (r *Repository) hasStagedChanges() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	for _, s := range status {
		if s.Staging != gogit.Unmodified && s.Staging != gogit.Untracked {
			return true, nil
		}
	}
	return false, nil
}

// Commit creates a new commit with the specified message
func (r *Repository) Commit(message string) (*CommitInfo, error) {
	if message == "" {
		return nil, fmt.Errorf("commit message cannot be empty")
	}

	changed, err := r.hasStagedChanges()
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNothingToCommit
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	signature := &object.Signature{
		Name:  "devai",
		Email: "devai@localhost",
		When:  time.Now(),
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{Author: signature})
	if err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &CommitInfo{
		Hash:    hash.String(),
		Message: message,
		Author:  signature.Name,
		Date:    signature.When,
	}, nil
}

// Snapshot stages files and commits them in the repository containing dir.
// It returns ErrNotRepository when dir is not under version control and
// ErrNothingToCommit when the files match HEAD.
func Snapshot(dir string, files []string, message string) (*CommitInfo, error) {
	if len(files) == 0 {
		return nil, ErrNothingToCommit
	}

	repo, err := Open(dir)
	if err != nil {
		return nil, err
	}

	staged, err := repo.StageFiles(files)
	if err != nil {
		return nil, err
	}

	info, err := repo.Commit(message)
	if err != nil {
		return nil, err
	}
	info.Files = staged
	return info, nil
}
