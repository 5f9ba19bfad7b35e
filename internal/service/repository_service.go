package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fruitygit/internal/cache"
	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/gitmsg"
	"fruitygit/internal/gitrepo"
	"fruitygit/internal/metrics"
	"fruitygit/internal/model"
	"fruitygit/internal/policy"
	"fruitygit/internal/repository"
)

const (
	repoCacheTTL = 2 * time.Minute

	// DefaultMaxUploadBytes caps a single committed file.
	DefaultMaxUploadBytes int64 = 100 * 1024 * 1024
)

// Upload is one file received for a commit, fully buffered by the caller.
type Upload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// RepositoryUpdate carries the optional fields of a metadata update.
type RepositoryUpdate struct {
	Description *string
	IsPrivate   *bool
}

// RepositoryService manages repository life cycle and Git operations.
type RepositoryService interface {
	Init(ctx context.Context, p policy.Principal, name string, isPrivate bool, description string) (*model.Repository, error)
	Get(ctx context.Context, p policy.Principal, name string) (*model.Repository, error)
	Commit(ctx context.Context, p policy.Principal, name string, upload Upload, summary, description string) (*model.CommitResult, error)
	History(ctx context.Context, p policy.Principal, name string) ([]model.Commit, error)
	List(ctx context.Context, p policy.Principal, email string) ([]model.Repository, error)
	Files(ctx context.Context, p policy.Principal, name string) ([]model.FileEntry, error)
	// Download checks access and returns a zip stream of the repository.
	// The caller must close the reader.
	Download(ctx context.Context, p policy.Principal, name string) (io.ReadCloser, error)
	Update(ctx context.Context, p policy.Principal, name string, update RepositoryUpdate) (*model.Repository, error)
	Delete(ctx context.Context, p policy.Principal, name string) error
}

// metadataCache is the subset of *cache.Client the service needs.
type metadataCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type repositoryService struct {
	repos     repository.RepoRepository
	cache     metadataCache
	root      string
	maxUpload int64
	log       zerolog.Logger

	// one mutex per repository name; serialises writers within this process
	repoMutexes sync.Map
}

// NewRepositoryService creates a new repository service rooted at root.
func NewRepositoryService(
	repos repository.RepoRepository,
	cache *cache.Client,
	root string,
	maxUpload int64,
	log zerolog.Logger,
) RepositoryService {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &repositoryService{
		repos:     repos,
		cache:     cache,
		root:      root,
		maxUpload: maxUpload,
		log:       log.With().Str("component", "repository").Logger(),
	}
}

// getMutex returns a mutex for a specific repository name.
func (s *repositoryService) getMutex(name string) *sync.Mutex {
	value, _ := s.repoMutexes.LoadOrStore(name, &sync.Mutex{})
	return value.(*sync.Mutex)
}

func (s *repositoryService) cacheKey(name string) string {
	return "repo:" + name
}

// cachedRepo keeps Path, which is hidden from the JSON form of the model.
type cachedRepo struct {
	Repo model.Repository `json:"repo"`
	Path string           `json:"path"`
}

func (s *repositoryService) repoPath(name string) string {
	return filepath.Join(s.root, name)
}

// ValidateRepoName rejects names that cannot be used as a single directory
// under the repositories root.
func ValidateRepoName(name string) error {
	switch name {
	case "", ".", "..", ".git":
		return apperrors.ErrInvalidRepoName
	}
	if strings.TrimSpace(name) != name {
		return apperrors.ErrInvalidRepoName
	}
	if len(name) > 255 || strings.ContainsAny(name, `/\<>:"|?*`) {
		return apperrors.ErrInvalidRepoName
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return apperrors.ErrInvalidRepoName
		}
	}
	return nil
}

// load resolves a repository by name, through the metadata cache.
func (s *repositoryService) load(ctx context.Context, name string) (*model.Repository, error) {
	if err := ValidateRepoName(name); err != nil {
		return nil, err
	}

	var cached cachedRepo
	if s.cache.GetJSON(ctx, s.cacheKey(name), &cached) {
		repo := cached.Repo
		repo.Path = cached.Path
		return &repo, nil
	}

	// cache fill and invalidation share the repository mutex
	mu := s.getMutex(name)
	mu.Lock()
	defer mu.Unlock()

	repo, err := s.repos.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRepositoryNotFound
		}
		return nil, fmt.Errorf("find repository: %w", err)
	}
	_ = s.cache.SetJSON(ctx, s.cacheKey(name), cachedRepo{Repo: *repo, Path: repo.Path}, repoCacheTTL)
	return repo, nil
}

func (s *repositoryService) authorize(ctx context.Context, p policy.Principal, name string, action policy.Action) (*model.Repository, error) {
	repo, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(repo, p, action); err != nil {
		return nil, err
	}
	return repo, nil
}

func (s *repositoryService) open(repo *model.Repository) (*gitrepo.Repo, error) {
	handle, err := gitrepo.Open(repo.Path)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNotRepository) {
			s.log.Warn().Str("repo", repo.Name).Str("path", repo.Path).Msg("metadata row without git directory")
			return nil, apperrors.ErrRepositoryNotFound
		}
		return nil, err
	}
	return handle, nil
}

// Init creates the directory, initialises Git in it and records the row.
func (s *repositoryService) Init(ctx context.Context, p policy.Principal, name string, isPrivate bool, description string) (repo *model.Repository, err error) {
	defer func() { metrics.RecordGitOperation("init", err) }()

	if err := ValidateRepoName(name); err != nil {
		return nil, err
	}

	mu := s.getMutex(name)
	mu.Lock()
	defer mu.Unlock()

	exists, err := s.repos.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check repository existence: %w", err)
	}
	path := s.repoPath(name)
	if exists || gitrepo.IsValid(path) {
		return nil, apperrors.ErrRepositoryExists
	}

	// a directory left behind by a failed init is not a repository; start clean
	if _, statErr := os.Stat(path); statErr == nil {
		if err := gitrepo.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale directory: %w", err)
		}
	}

	if _, err := gitrepo.Init(path); err != nil {
		return nil, err
	}

	repo = &model.Repository{
		Name:        name,
		Description: strings.TrimSpace(description),
		Path:        path,
		OwnerID:     p.UserID,
		OwnerName:   p.Name,
		OwnerEmail:  p.Email,
		IsPrivate:   isPrivate,
	}
	if err := s.repos.Create(ctx, repo); err != nil {
		if rmErr := gitrepo.Remove(path); rmErr != nil {
			s.log.Error().Err(rmErr).Str("repo", name).Msg("rollback init directory")
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrRepositoryExists
		}
		return nil, fmt.Errorf("create repository: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(name))

	s.log.Info().Str("repo", name).Uint("user_id", p.UserID).Bool("private", isPrivate).Msg("repository initialised")
	return repo, nil
}

func (s *repositoryService) Get(ctx context.Context, p policy.Principal, name string) (*model.Repository, error) {
	return s.authorize(ctx, p, name, policy.Read)
}

// Commit writes the upload at the worktree root and commits it as p.
func (s *repositoryService) Commit(ctx context.Context, p policy.Principal, name string, upload Upload, summary, description string) (result *model.CommitResult, err error) {
	defer func() { metrics.RecordGitOperation("commit", err) }()

	repo, err := s.authorize(ctx, p, name, policy.Read)
	if err != nil {
		return nil, err
	}

	if upload.Content == nil || upload.Size <= 0 {
		return nil, apperrors.ErrNoFile
	}
	if upload.Size > s.maxUpload {
		return nil, apperrors.ErrFileTooLarge
	}
	fileName, err := baseFileName(upload.FileName)
	if err != nil {
		return nil, err
	}
	message := gitmsg.Encode(summary, description)

	mu := s.getMutex(name)
	mu.Lock()
	defer mu.Unlock()

	handle, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	id, err := handle.CommitFile(fileName, io.LimitReader(upload.Content, s.maxUpload), message, gitrepo.Author{
		Name:  p.Name,
		Email: p.Email,
	})
	if err != nil {
		if errors.Is(err, gitrepo.ErrNothingToCommit) {
			return nil, apperrors.ErrNothingToCommit
		}
		return nil, fmt.Errorf("commit %s: %w", name, err)
	}

	s.log.Info().Str("repo", name).Uint("user_id", p.UserID).Str("commit", id).Str("file", fileName).Msg("commit created")
	return &model.CommitResult{CommitID: id, FileName: fileName, Message: message}, nil
}

// baseFileName strips any directory part a client may send.
func baseFileName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	switch name {
	case "", ".", "..", ".git":
		return "", apperrors.ErrInvalidFileName
	}
	return name, nil
}

func (s *repositoryService) History(ctx context.Context, p policy.Principal, name string) ([]model.Commit, error) {
	repo, err := s.authorize(ctx, p, name, policy.Read)
	if err != nil {
		return nil, err
	}
	handle, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	return handle.Log()
}

// List returns the caller's repositories, or only the public ones of the
// user with the given email. Rows without a valid directory are skipped.
func (s *repositoryService) List(ctx context.Context, p policy.Principal, email string) ([]model.Repository, error) {
	var (
		repos []model.Repository
		err   error
	)
	email = strings.TrimSpace(email)
	if email == "" || strings.EqualFold(email, p.Email) {
		repos, err = s.repos.ListByOwner(ctx, p.UserID, p.Email)
	} else {
		repos, err = s.repos.ListPublicByOwnerEmail(ctx, strings.ToLower(email))
	}
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	valid := make([]model.Repository, 0, len(repos))
	for _, repo := range repos {
		if gitrepo.IsValid(repo.Path) {
			valid = append(valid, repo)
		}
	}
	return valid, nil
}

func (s *repositoryService) Files(ctx context.Context, p policy.Principal, name string) ([]model.FileEntry, error) {
	repo, err := s.authorize(ctx, p, name, policy.Read)
	if err != nil {
		return nil, err
	}
	handle, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	return handle.Files()
}

func (s *repositoryService) Download(ctx context.Context, p policy.Principal, name string) (io.ReadCloser, error) {
	repo, err := s.authorize(ctx, p, name, policy.Read)
	if err != nil {
		return nil, err
	}
	if !gitrepo.IsValid(repo.Path) {
		return nil, apperrors.ErrRepositoryNotFound
	}

	pr, pw := io.Pipe()
	go func() {
		err := gitrepo.Archive(ctx, pw, repo.Path)
		metrics.RecordGitOperation("download", err)
		if err != nil {
			s.log.Error().Err(err).Str("repo", name).Msg("archive repository")
		}
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// Update changes description or visibility. Owner only.
func (s *repositoryService) Update(ctx context.Context, p policy.Principal, name string, update RepositoryUpdate) (*model.Repository, error) {
	repo, err := s.authorize(ctx, p, name, policy.Manage)
	if err != nil {
		return nil, err
	}

	mu := s.getMutex(name)
	mu.Lock()
	defer mu.Unlock()

	if update.Description != nil {
		repo.Description = strings.TrimSpace(*update.Description)
	}
	if update.IsPrivate != nil {
		repo.IsPrivate = *update.IsPrivate
	}
	if err := s.repos.Update(ctx, repo); err != nil {
		return nil, fmt.Errorf("update repository: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(name))
	return repo, nil
}

// Delete removes directory and row. Owner only.
func (s *repositoryService) Delete(ctx context.Context, p policy.Principal, name string) (err error) {
	defer func() { metrics.RecordGitOperation("delete", err) }()

	repo, err := s.authorize(ctx, p, name, policy.Manage)
	if err != nil {
		return err
	}

	mu := s.getMutex(name)
	mu.Lock()
	defer mu.Unlock()

	// row first: a leftover directory is cleaned up by the next Init
	if err := s.repos.Delete(ctx, repo.ID); err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(name))
	if err := gitrepo.Remove(repo.Path); err != nil {
		return fmt.Errorf("remove directory: %w", err)
	}

	s.log.Info().Str("repo", name).Uint("user_id", p.UserID).Msg("repository deleted")
	return nil
}
