// Package gitrepo is a thin wrapper around go-git for the handful of
// operations the hosting service needs on a working directory.
package gitrepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"fruitygit/internal/gitmsg"
	"fruitygit/internal/model"
)

var (
	// ErrNotRepository is returned when a path holds no Git repository.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNothingToCommit is returned when staging left the tree unchanged.
	ErrNothingToCommit = errors.New("nothing to commit")
)

const gitDir = ".git"

// Author identifies who made a commit.
type Author struct {
	Name  string
	Email string
}

// Repo is a handle on one on-disk working repository. Handles are cheap and
// not shared between requests.
type Repo struct {
	path string
	repo *git.Repository
	now  func() time.Time
}

// Init creates path if needed and initialises a non-bare repository in it.
func Init(path string) (*Repo, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("git init: %w", err)
	}
	return &Repo{path: path, repo: repo, now: time.Now}, nil
}

// Open opens an existing repository.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("git open: %w", err)
	}
	return &Repo{path: path, repo: repo, now: time.Now}, nil
}

// IsValid reports whether path holds a repository go-git can open.
func IsValid(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// Remove deletes the repository directory and everything under it.
func Remove(path string) error {
	return os.RemoveAll(path)
}

// Path returns the working directory.
func (r *Repo) Path() string {
	return r.path
}

// CommitFile writes content to name at the worktree root, stages it and
// commits it with author as both author and committer.
func (r *Repo) CommitFile(name string, content io.Reader, message string, author Author) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	if err := writeFile(wt.Filesystem, name, content); err != nil {
		return "", err
	}
	if _, err := wt.Add(name); err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}
	if status.IsClean() {
		return "", ErrNothingToCommit
	}

	sig := &object.Signature{Name: author.Name, Email: author.Email, When: r.now()}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrNothingToCommit
		}
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}

func writeFile(fs billy.Filesystem, name string, content io.Reader) error {
	f, err := fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// Log returns the history reachable from HEAD, newest first. A repository
// without commits has an empty history.
func (r *Repo) Log() ([]model.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []model.Commit{}, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	defer iter.Close()

	commits := []model.Commit{}
	err = iter.ForEach(func(c *object.Commit) error {
		summary, description := gitmsg.Decode(c.Message)
		commits = append(commits, model.Commit{
			ID:          c.Hash.String(),
			Author:      c.Author.Name,
			AuthorEmail: c.Author.Email,
			Summary:     summary,
			Description: description,
			Message:     c.Message,
			Date:        c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk log: %w", err)
	}
	return commits, nil
}

// Files lists the working tree recursively. The .git directory is skipped.
func (r *Repo) Files() ([]model.FileEntry, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	return listDir(wt.Filesystem, "")
}

func listDir(fs billy.Filesystem, dir string) ([]model.FileEntry, error) {
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]model.FileEntry, 0, len(infos))
	for _, info := range infos {
		if dir == "" && info.Name() == gitDir {
			continue
		}
		rel := fs.Join(dir, info.Name())
		entry := model.FileEntry{
			Name:         info.Name(),
			Path:         rel,
			Type:         model.FileTypeFile,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		}
		if info.IsDir() {
			entry.Type = model.FileTypeDirectory
			entry.Size = 0
			children, err := listDir(fs, rel)
			if err != nil {
				return nil, err
			}
			entry.Contents = children
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
