package store

import (
	"context"
	"errors"

	"github.com/ugaemi/arena-server/internal/account"
)

// ErrAccountNotFound is returned by updates that target a missing account.
var ErrAccountNotFound = errors.New("account not found")

// DefaultLeaderboardSize is used when a non-positive limit is requested.
const DefaultLeaderboardSize = 10

// AccountStore defines the interface for persistent account storage.
type AccountStore interface {
	// FindByID looks up an account by internal ID. It returns nil, nil when there is none.
	FindByID(ctx context.Context, id string) (*account.Account, error)
	// Create inserts a new account.
	Create(ctx context.Context, acc *account.Account) error
	// UpdateLastLogin updates the last login timestamp.
	UpdateLastLogin(ctx context.Context, id string) error
	// UpdateNickname updates the account nickname.
	UpdateNickname(ctx context.Context, id string, nickname string) error
}

// RunStore keeps finished arena runs.
type RunStore interface {
	// SaveRun inserts a finished run.
	SaveRun(ctx context.Context, run *account.Run) error
	// TopRuns returns the best runs, best first.
	TopRuns(ctx context.Context, limit int) ([]*account.Run, error)
	// RunsByAccount returns an account's most recent runs, newest first.
	RunsByAccount(ctx context.Context, accountID string, limit int) ([]*account.Run, error)
}

// Store is everything the server persists.
type Store interface {
	AccountStore
	RunStore
	// Close releases database resources.
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardSize
	}
	return limit
}
