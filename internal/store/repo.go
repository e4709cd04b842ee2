package store

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/quizbook/internal/progress"
)

var (
	// ErrNotFound is returned by Load when the user has no saved progress.
	ErrNotFound = errors.New("progress not found")

	// ErrEmptyUsername is returned for blank usernames.
	ErrEmptyUsername = errors.New("username must not be empty")
)

// ProgressRepo persists one Progress record per username.
//
// Save overwrites the whole record; there is no merging and no locking, so
// the last writer wins. Two sessions for the same username running at the
// same time will silently overwrite each other's progress.
type ProgressRepo interface {
	// Load returns the saved progress, or ErrNotFound for a new user.
	Load(ctx context.Context, username string) (*progress.Progress, error)

	// Save replaces the stored progress for username.
	Save(ctx context.Context, username string, p *progress.Progress) error

	// Delete removes the stored progress. Deleting a missing record is not an error.
	Delete(ctx context.Context, username string) error

	// Usernames lists every user with saved progress, sorted.
	Usernames(ctx context.Context) ([]string, error)
}

// checkUsername rejects usernames that are empty after trimming.
func checkUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	return nil
}
