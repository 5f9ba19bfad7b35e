// Package policy decides what a principal may do with a repository.
package policy

import (
	"strings"

	apperrors "fruitygit/internal/errors"
	"fruitygit/internal/model"
)

// Principal is the authenticated caller, taken from access token claims.
type Principal struct {
	UserID uint
	Name   string
	Email  string
}

// Action is an operation class checked against a repository.
type Action int

const (
	// Read covers history, files, download, metadata and commits.
	Read Action = iota
	// Manage covers delete and update.
	Manage
)

// IsOwner matches by owner id, or by email for rows keyed on email only.
func IsOwner(repo *model.Repository, p Principal) bool {
	if repo.OwnerID != 0 && repo.OwnerID == p.UserID {
		return true
	}
	return repo.OwnerEmail != "" && strings.EqualFold(repo.OwnerEmail, p.Email)
}

// Authorize returns ErrAccessDenied unless p may perform action on repo.
func Authorize(repo *model.Repository, p Principal, action Action) error {
	if IsOwner(repo, p) {
		return nil
	}
	if action == Read && !repo.IsPrivate {
		return nil
	}
	return apperrors.ErrAccessDenied
}
