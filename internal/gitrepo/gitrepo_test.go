package gitrepo

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitygit/internal/gitmsg"
	"fruitygit/internal/model"
)

var ada = Author{Name: "Ada", Email: "ada@example.com"}

func newRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := Init(filepath.Join(t.TempDir(), "demo"))
	require.NoError(t, err)
	return repo
}

func TestInitOpenIsValid(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	assert.False(t, IsValid(dir))

	_, err := Open(dir)
	assert.ErrorIs(t, err, ErrNotRepository)

	_, err = Init(dir)
	require.NoError(t, err)
	assert.True(t, IsValid(dir))

	opened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, opened.Path())

	require.NoError(t, Remove(dir))
	assert.False(t, IsValid(dir))
}

func TestLog_EmptyRepository(t *testing.T) {
	repo := newRepo(t)

	commits, err := repo.Log()
	require.NoError(t, err)
	assert.Empty(t, commits)
	assert.NotNil(t, commits)
}

func TestCommitFile_HistoryRoundTrip(t *testing.T) {
	repo := newRepo(t)
	when := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return when }

	id, err := repo.CommitFile("README.md", strings.NewReader("# demo\n"), gitmsg.Encode("Add readme", "First draft"), ada)
	require.NoError(t, err)
	assert.Len(t, id, 40)

	commits, err := repo.Log()
	require.NoError(t, err)
	require.Len(t, commits, 1)

	got := commits[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ada", got.Author)
	assert.Equal(t, "ada@example.com", got.AuthorEmail)
	assert.Equal(t, "Add readme", got.Summary)
	assert.Equal(t, "First draft", got.Description)
	assert.True(t, when.Equal(got.Date))
}

func TestCommitFile_NewestFirstAndNothingToCommit(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.CommitFile("a.txt", strings.NewReader("one"), "first", ada)
	require.NoError(t, err)
	second, err := repo.CommitFile("a.txt", strings.NewReader("two"), "second", ada)
	require.NoError(t, err)

	_, err = repo.CommitFile("a.txt", strings.NewReader("two"), "again", ada)
	assert.ErrorIs(t, err, ErrNothingToCommit)

	commits, err := repo.Log()
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, second, commits[0].ID)
	assert.Equal(t, "first", commits[1].Summary)
}

func TestFiles_SkipsGitDirectory(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.CommitFile("notes.txt", strings.NewReader("hello"), "notes", ada)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(repo.Path(), "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Path(), "docs", "guide.md"), []byte("guide"), 0o644))

	files, err := repo.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "docs", files[0].Name)
	assert.Equal(t, model.FileTypeDirectory, files[0].Type)
	require.Len(t, files[0].Contents, 1)
	assert.Equal(t, filepath.Join("docs", "guide.md"), files[0].Contents[0].Path)

	assert.Equal(t, "notes.txt", files[1].Name)
	assert.Equal(t, model.FileTypeFile, files[1].Type)
	assert.Equal(t, int64(5), files[1].Size)
}

func TestArchive_ContainsWorktreeAndGitDir(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.CommitFile("main.go", strings.NewReader("package main\n"), "main", ada)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Archive(context.Background(), &buf, repo.Path()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}
	require.Contains(t, names, "main.go")
	assert.Contains(t, names, ".git/")
	assert.Contains(t, names, ".git/HEAD")

	rc, err := names["main.go"].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))
}

func TestArchive_StopsOnCancelledContext(t *testing.T) {
	repo := newRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Archive(ctx, io.Discard, repo.Path())
	assert.ErrorIs(t, err, context.Canceled)
}
