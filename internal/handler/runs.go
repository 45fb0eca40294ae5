package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ugaemi/arena-server/internal/account"
	"github.com/ugaemi/arena-server/internal/room"
	"github.com/ugaemi/arena-server/internal/store"
)

const maxLeaderboardLimit = 100

// RunRecorder persists finished games.
type RunRecorder struct {
	runs store.RunStore
}

// NewRunRecorder creates a recorder backed by runs.
func NewRunRecorder(runs store.RunStore) *RunRecorder {
	return &RunRecorder{runs: runs}
}

// Record saves res as a run. Games that end on shutdown are kept as well.
func (rr *RunRecorder) Record(res room.GameResult) {
	if res.AccountID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	run := account.NewRun(res.AccountID, res.Nickname, res.Layout, res.Result)
	if err := rr.runs.SaveRun(ctx, run); err != nil {
		slog.Error("failed to save run", "room", res.Room, "account_id", res.AccountID, "error", err)
		return
	}
	slog.Info("run saved", "room", res.Room, "account_id", res.AccountID, "kills", run.Kills, "survived", run.Survived)
}

type runsResponse struct {
	Runs []*account.Run `json:"runs"`
}

// LeaderboardHandler serves the best runs. ?limit= caps the result.
func LeaderboardHandler(runs store.RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := parseLimit(r.URL.Query().Get("limit"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}

		top, err := runs.TopRuns(r.Context(), limit)
		if err != nil {
			slog.Error("failed to load leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, runsResponse{Runs: nonNil(top)})
	}
}

// AccountRunsHandler serves an account's recent runs, newest first.
// It expects ?account_id= and accepts ?limit=.
func AccountRunsHandler(runs store.RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account_id")
		if accountID == "" {
			writeError(w, http.StatusBadRequest, "account_id is required")
			return
		}
		limit, ok := parseLimit(r.URL.Query().Get("limit"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}

		recent, err := runs.RunsByAccount(r.Context(), accountID, limit)
		if err != nil {
			slog.Error("failed to load runs", "account_id", accountID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, runsResponse{Runs: nonNil(recent)})
	}
}

// parseLimit reads a limit parameter. Empty means the store default.
func parseLimit(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return min(n, maxLeaderboardLimit), true
}

func nonNil(runs []*account.Run) []*account.Run {
	if runs == nil {
		return []*account.Run{}
	}
	return runs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
