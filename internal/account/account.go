package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/ugaemi/arena-server/internal/game"
)

// Account represents a persistent player account.
type Account struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	IsGuest     bool      `json:"is_guest"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// NewGuestAccount creates a new guest account with only a nickname.
func NewGuestAccount(nickname string) *Account {
	now := time.Now()
	return &Account{
		ID:          uuid.New().String(),
		Nickname:    nickname,
		IsGuest:     true,
		CreatedAt:   now,
		LastLoginAt: now,
	}
}

// Run is the stored result of one arena session.
type Run struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Nickname    string    `json:"nickname"`
	Layout      string    `json:"layout"`
	Kills       int       `json:"kills"`
	Survived    float64   `json:"survived"`
	Dashes      int       `json:"dashes"`
	DamageDealt int       `json:"damage_dealt"`
	EndedAt     time.Time `json:"ended_at"`
}

// NewRun records res for the given account, ending now.
func NewRun(accountID, nickname, layout string, res game.Result) *Run {
	return &Run{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Nickname:    nickname,
		Layout:      layout,
		Kills:       res.Kills,
		Survived:    res.Survived,
		Dashes:      res.Dashes,
		DamageDealt: res.DamageDealt,
		EndedAt:     time.Now(),
	}
}

// Better reports whether r ranks above other on a leaderboard: more kills
// first, then the longer survival, then the earlier finish.
func (r *Run) Better(other *Run) bool {
	if r.Kills != other.Kills {
		return r.Kills > other.Kills
	}
	if r.Survived != other.Survived {
		return r.Survived > other.Survived
	}
	return r.EndedAt.Before(other.EndedAt)
}
