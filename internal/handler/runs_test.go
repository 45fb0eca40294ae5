package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugaemi/arena-server/internal/account"
	"github.com/ugaemi/arena-server/internal/game"
	"github.com/ugaemi/arena-server/internal/room"
	"github.com/ugaemi/arena-server/internal/store"
)

type failingRuns struct{}

func (failingRuns) SaveRun(context.Context, *account.Run) error { return errors.New("down") }
func (failingRuns) TopRuns(context.Context, int) ([]*account.Run, error) {
	return nil, errors.New("down")
}
func (failingRuns) RunsByAccount(context.Context, string, int) ([]*account.Run, error) {
	return nil, errors.New("down")
}

func seedRuns(t *testing.T, st *store.MemoryStore) {
	t.Helper()
	rec := NewRunRecorder(st)
	rec.Record(room.GameResult{Room: "ABCD", Layout: "default", AccountID: "acc-1", Nickname: "One", Result: game.Result{Kills: 2, Survived: 30}})
	rec.Record(room.GameResult{Room: "ABCD", Layout: "default", AccountID: "acc-2", Nickname: "Two", Result: game.Result{Kills: 5, Survived: 12}})
	rec.Record(room.GameResult{Room: "EFGH", Layout: "default", AccountID: "acc-1", Nickname: "One", Result: game.Result{Kills: 7, Survived: 45}})
}

func getRuns(t *testing.T, h http.Handler, target string) (int, runsResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var resp runsResponse
	if rec.Code == http.StatusOK {
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestRunRecorder_SkipsAnonymous(t *testing.T) {
	st := store.NewMemoryStore()
	NewRunRecorder(st).Record(room.GameResult{Room: "ABCD", Result: game.Result{Kills: 3}})

	runs, err := st.TopRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunRecorder_StoreFailure(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRunRecorder(failingRuns{}).Record(room.GameResult{AccountID: "acc-1"})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	st := store.NewMemoryStore()
	seedRuns(t, st)
	h := LeaderboardHandler(st)

	code, resp := getRuns(t, h, "/leaderboard")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Runs, 3)
	assert.Equal(t, 7, resp.Runs[0].Kills)
	assert.Equal(t, 5, resp.Runs[1].Kills)
	assert.Equal(t, 2, resp.Runs[2].Kills)
	assert.Equal(t, "default", resp.Runs[0].Layout)

	code, resp = getRuns(t, h, "/leaderboard?limit=1")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "acc-1", resp.Runs[0].AccountID)
}

func TestLeaderboardHandler_Empty(t *testing.T) {
	rec := httptest.NewRecorder()
	LeaderboardHandler(store.NewMemoryStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestLeaderboardHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		runs   store.RunStore
		target string
		status int
	}{
		{"non-numeric limit", store.NewMemoryStore(), "/leaderboard?limit=ten", http.StatusBadRequest},
		{"zero limit", store.NewMemoryStore(), "/leaderboard?limit=0", http.StatusBadRequest},
		{"store failure", failingRuns{}, "/leaderboard", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := getRuns(t, LeaderboardHandler(tt.runs), tt.target)
			assert.Equal(t, tt.status, code)
		})
	}
}

func TestAccountRunsHandler(t *testing.T) {
	st := store.NewMemoryStore()
	seedRuns(t, st)
	h := AccountRunsHandler(st)

	code, resp := getRuns(t, h, "/runs?account_id=acc-1")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Runs, 2)
	for _, run := range resp.Runs {
		assert.Equal(t, "acc-1", run.AccountID)
	}

	code, _ = getRuns(t, h, "/runs")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = getRuns(t, AccountRunsHandler(failingRuns{}), "/runs?account_id=acc-1")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"5", 5, true},
		{"1000", maxLeaderboardLimit, true},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseLimit(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
