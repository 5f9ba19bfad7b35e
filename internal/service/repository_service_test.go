package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/gitrepo"
	"fruitygit/internal/policy"
)

var (
	alice = policy.Principal{UserID: 1, Name: "Alice", Email: "alice@example.com"}
	bob   = policy.Principal{UserID: 2, Name: "Bob", Email: "bob@example.com"}
)

func newRepositoryService(t *testing.T) (*repositoryService, *memoryRepoRepository) {
	t.Helper()
	store := newMemoryRepoRepository()
	svc := NewRepositoryService(store, nil, t.TempDir(), 1024, zerolog.Nop()).(*repositoryService)
	return svc, store
}

func upload(name, content string) Upload {
	return Upload{FileName: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func TestValidateRepoName(t *testing.T) {
	for _, name := range []string{"demo", "my-repo_1", "v1.2"} {
		assert.NoError(t, ValidateRepoName(name), name)
	}
	for _, name := range []string{"", ".", "..", ".git", "a/b", `a\b`, "what?", "tab\tname", `x"y`, "   ", " demo", "demo "} {
		assert.ErrorIs(t, ValidateRepoName(name), apperrors.ErrInvalidRepoName, name)
	}
}

func TestRepositoryService_InitTwice(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()

	repo, err := svc.Init(ctx, alice, "demo", false, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", repo.Description)
	assert.Equal(t, alice.UserID, repo.OwnerID)
	assert.True(t, gitrepo.IsValid(repo.Path))

	_, err = svc.Init(ctx, bob, "demo", false, "")
	assert.ErrorIs(t, err, apperrors.ErrRepositoryExists)
}

func TestRepositoryService_InitRejectsExistingGitDirectory(t *testing.T) {
	svc, _ := newRepositoryService(t)
	_, err := gitrepo.Init(svc.repoPath("orphan"))
	require.NoError(t, err)

	_, err = svc.Init(context.Background(), alice, "orphan", false, "")
	assert.ErrorIs(t, err, apperrors.ErrRepositoryExists)
}

func TestRepositoryService_InitReplacesStaleDirectory(t *testing.T) {
	svc, _ := newRepositoryService(t)
	stale := svc.repoPath("stale")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "junk"), []byte("x"), 0o644))

	_, err := svc.Init(context.Background(), alice, "stale", false, "")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(stale, "junk"))
	assert.True(t, os.IsNotExist(err))
}

func TestRepositoryService_InitRollsBackDirectory(t *testing.T) {
	svc, store := newRepositoryService(t)
	store.createErr = errors.New("db down")

	_, err := svc.Init(context.Background(), alice, "demo", false, "")
	require.Error(t, err)

	_, statErr := os.Stat(svc.repoPath("demo"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRepositoryService_PrivateVisibility(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()

	_, err := svc.Init(ctx, alice, "open", false, "")
	require.NoError(t, err)
	_, err = svc.Init(ctx, alice, "secret", true, "")
	require.NoError(t, err)

	own, err := svc.List(ctx, alice, "")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	ownByEmail, err := svc.List(ctx, alice, "ALICE@example.com")
	require.NoError(t, err)
	assert.Len(t, ownByEmail, 2)

	seenByBob, err := svc.List(ctx, bob, alice.Email)
	require.NoError(t, err)
	require.Len(t, seenByBob, 1)
	assert.Equal(t, "open", seenByBob[0].Name)

	_, err = svc.History(ctx, bob, "secret")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	_, err = svc.Files(ctx, bob, "secret")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	_, err = svc.Download(ctx, bob, "secret")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	_, err = svc.Commit(ctx, bob, "secret", upload("a.txt", "x"), "try", "")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	_, err = svc.History(ctx, bob, "open")
	assert.NoError(t, err)
}

func TestRepositoryService_ListSkipsMissingDirectories(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()

	repo, err := svc.Init(ctx, alice, "gone", false, "")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(repo.Path))

	repos, err := svc.List(ctx, alice, "")
	require.NoError(t, err)
	assert.Empty(t, repos)

	_, err = svc.History(ctx, alice, "gone")
	assert.ErrorIs(t, err, apperrors.ErrRepositoryNotFound)
}

func TestRepositoryService_CommitAndHistory(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()

	_, err := svc.Init(ctx, alice, "demo", false, "")
	require.NoError(t, err)

	history, err := svc.History(ctx, alice, "demo")
	require.NoError(t, err)
	assert.Empty(t, history)

	result, err := svc.Commit(ctx, alice, "demo", upload(`C:\Users\alice\notes.txt`, "hello"), "Add notes", "Some context")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", result.FileName)
	assert.Equal(t, "Add notes\n\nSome context", result.Message)

	history, err = svc.History(ctx, alice, "demo")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.CommitID, history[0].ID)
	assert.Equal(t, "Alice", history[0].Author)
	assert.Equal(t, "alice@example.com", history[0].AuthorEmail)
	assert.Equal(t, "Add notes", history[0].Summary)
	assert.Equal(t, "Some context", history[0].Description)
	assert.False(t, history[0].Date.IsZero())

	_, err = svc.Commit(ctx, alice, "demo", upload("notes.txt", "hello"), "Again", "")
	assert.ErrorIs(t, err, apperrors.ErrNothingToCommit)

	files, err := svc.Files(ctx, alice, "demo")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Name)
}

func TestRepositoryService_CommitValidatesUpload(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, alice, "demo", false, "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		repo    string
		upload  Upload
		wantErr error
	}{
		{"empty file", "demo", upload("a.txt", ""), apperrors.ErrNoFile},
		{"no content", "demo", Upload{FileName: "a.txt", Size: 3}, apperrors.ErrNoFile},
		{"too large", "demo", upload("a.txt", strings.Repeat("x", 2048)), apperrors.ErrFileTooLarge},
		{"bad name", "demo", upload("dir/..", "x"), apperrors.ErrInvalidFileName},
		{"git dir", "demo", upload(".git", "x"), apperrors.ErrInvalidFileName},
		{"unknown repo", "nope", upload("a.txt", "x"), apperrors.ErrRepositoryNotFound},
		{"invalid repo name", "../etc", upload("a.txt", "x"), apperrors.ErrInvalidRepoName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Commit(ctx, alice, tt.repo, tt.upload, "summary", "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRepositoryService_ConcurrentCommits(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, alice, "busy", false, "")
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i)) + ".txt"
			_, err := svc.Commit(ctx, alice, "busy", upload(name, name), "add "+name, "")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	history, err := svc.History(ctx, alice, "busy")
	require.NoError(t, err)
	assert.Len(t, history, writers)
}

func TestRepositoryService_Download(t *testing.T) {
	svc, _ := newRepositoryService(t)
	ctx := context.Background()
	_, err := svc.Init(ctx, alice, "demo", false, "")
	require.NoError(t, err)
	_, err = svc.Commit(ctx, alice, "demo", upload("readme.md", "# hi"), "readme", "")
	require.NoError(t, err)

	rc, err := svc.Download(ctx, bob, "demo")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "readme.md")
	assert.Contains(t, names, ".git/HEAD")
}

func TestRepositoryService_UpdateAndDelete(t *testing.T) {
	svc, store := newRepositoryService(t)
	ctx := context.Background()
	repo, err := svc.Init(ctx, alice, "demo", false, "old")
	require.NoError(t, err)

	private := true
	desc := "new"
	_, err = svc.Update(ctx, bob, "demo", RepositoryUpdate{IsPrivate: &private})
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	updated, err := svc.Update(ctx, alice, "demo", RepositoryUpdate{Description: &desc, IsPrivate: &private})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)
	assert.True(t, updated.IsPrivate)

	_, err = svc.Get(ctx, bob, "demo")
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	assert.ErrorIs(t, svc.Delete(ctx, bob, "demo"), apperrors.ErrAccessDenied)
	require.NoError(t, svc.Delete(ctx, alice, "demo"))

	exists, err := store.ExistsByName(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.False(t, gitrepo.IsValid(repo.Path))

	_, err = svc.Get(ctx, alice, "demo")
	assert.ErrorIs(t, err, apperrors.ErrRepositoryNotFound)
}

func TestRepositoryService_DeleteDuringCacheFill(t *testing.T) {
	svc, store := newRepositoryService(t)
	svc.cache = newMemoryCache()
	ctx := context.Background()

	_, err := svc.Init(ctx, alice, "demo", false, "")
	require.NoError(t, err)

	deleted := make(chan error, 1)
	var fired atomic.Bool
	store.afterFind = func() {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		go func() { deleted <- svc.Delete(ctx, alice, "demo") }()
		// give Delete the chance to finish before this read fills the cache
		select {
		case err := <-deleted:
			deleted <- err
		case <-time.After(200 * time.Millisecond):
		}
	}

	_, err = svc.Get(ctx, alice, "demo")
	require.NoError(t, err)
	require.NoError(t, <-deleted)

	_, err = svc.Get(ctx, alice, "demo")
	assert.ErrorIs(t, err, apperrors.ErrRepositoryNotFound)
}
