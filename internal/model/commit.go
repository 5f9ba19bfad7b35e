package model

import "time"

// Commit is one history entry read from Git. It is never persisted.
type Commit struct {
	ID          string    `json:"id"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"author_email"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Message     string    `json:"message"`
	Date        time.Time `json:"date"`
}

// CommitResult is returned after a successful upload commit.
type CommitResult struct {
	CommitID string `json:"commit_id"`
	FileName string `json:"file_name"`
	Message  string `json:"message"`
}

// FileEntry is a node of a repository working tree.
type FileEntry struct {
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	Type         string      `json:"type"`
	Size         int64       `json:"size"`
	LastModified time.Time   `json:"last_modified"`
	Contents     []FileEntry `json:"contents,omitempty"`
}

const (
	// FileTypeFile marks a regular file entry.
	FileTypeFile = "file"
	// FileTypeDirectory marks a directory entry.
	FileTypeDirectory = "directory"
)
