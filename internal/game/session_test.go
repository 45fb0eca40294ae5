package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugaemi/arena-server/internal/geom"
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		Arena:       testArena(),
		Player:      testPlayerTemplate(),
		Enemies:     testTemplates()[:1],
		SpawnPoints: []geom.Vec{geom.V(0, -10)},
		SpawnRate:   1,
	}
}

func newTestSession(t *testing.T, cfg SessionConfig) *Session {
	t.Helper()
	s, err := NewSession(cfg, NewPlayer("tester"), fixedRand{f: 0.5})
	require.NoError(t, err)
	return s
}

func countEvents(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestNewSession_Validation(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Arena.Radius = 0
	_, err := NewSession(cfg, NewPlayer("x"), fixedRand{})
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = NewSession(testSessionConfig(), nil, fixedRand{})
	assert.Error(t, err)

	_, err = NewSession(testSessionConfig(), NewPlayer("x"), nil)
	assert.Error(t, err)
}

func TestNewSession_SpawnsPlayerAtCenter(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Arena.Center = geom.V(3, 4)
	s := newTestSession(t, cfg)

	assert.Equal(t, geom.V(3, 4), s.Player.Position)
	assert.Equal(t, 100, s.Player.Health)
	assert.Empty(t, s.Enemies)
	assert.False(t, s.Over)
}

func TestSessionStep_Spawns(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	assert.Zero(t, countEvents(s.Step(0.5), EventEnemySpawned))
	events := s.Step(0.5)
	assert.Equal(t, 1, countEvents(events, EventEnemySpawned))
	require.Len(t, s.Enemies, 1)
	assert.Equal(t, geom.V(0, -10), s.Enemies[0].Position)
	assert.Equal(t, uint64(2), s.Tick)
	assert.InDelta(t, 1.0, s.Elapsed, 1e-9)
}

func TestSessionStep_MaxEnemies(t *testing.T) {
	cfg := testSessionConfig()
	cfg.SpawnRate = 0.1
	cfg.MaxEnemies = 2
	s := newTestSession(t, cfg)

	events := s.Step(1)
	assert.Equal(t, 2, countEvents(events, EventEnemySpawned))
	assert.Len(t, s.Enemies, 2)
}

func TestSessionStep_PlayerDies(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Player.Health = 5
	cfg.Enemies = nil
	s := newTestSession(t, cfg)
	s.Enemies = append(s.Enemies, runningEnemy(s.Player.Position))

	events := s.Step(0.1)
	assert.Equal(t, 1, countEvents(events, EventPlayerHit))
	assert.Equal(t, 1, countEvents(events, EventPlayerDied))
	assert.True(t, s.Over)

	assert.Nil(t, s.Step(0.1), "a finished session no longer advances")
	assert.Equal(t, uint64(1), s.Tick)
}

func TestSessionStep_PrunesInactive(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Enemies = nil
	s := newTestSession(t, cfg)

	gone := runningEnemy(geom.V(5, 5))
	gone.Active = false
	gone.Health = 0
	kept := runningEnemy(geom.V(-5, -5))
	s.Enemies = []*Enemy{gone, kept}

	events := s.Step(0.1)
	require.Equal(t, 1, countEvents(events, EventEnemyRemoved))
	assert.Equal(t, 1, s.Kills)
	require.Len(t, s.Enemies, 1)
	assert.Equal(t, kept.ID, s.Enemies[0].ID)
	assert.Nil(t, s.FindEnemy(gone.ID))
	assert.Same(t, kept, s.FindEnemy(kept.ID))
}

func TestSessionDashKillsEnemy(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Enemies = nil
	s := newTestSession(t, cfg)

	victim := runningEnemy(geom.V(6, 0))
	victim.Health = 30
	victim.Speed = 0
	s.Enemies = []*Enemy{victim}

	require.True(t, s.Player.PressAim())
	require.True(t, s.Player.ReleaseAim(geom.V(5, 0)))

	var killed int
	for i := 0; i < 60 && killed == 0; i++ {
		killed += countEvents(s.Step(0.05), EventEnemyKilled)
	}
	assert.Equal(t, 1, killed)
	assert.Equal(t, 0, s.Kills, "counted once the exit is over")
	assert.Equal(t, 30, s.DamageDealt)

	var removed int
	for i := 0; i < 100 && removed == 0; i++ {
		removed += countEvents(s.Step(0.05), EventEnemyRemoved)
	}
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Kills)

	res := s.Result()
	assert.Equal(t, 1, res.Kills)
	assert.Equal(t, 1, res.Dashes)
	assert.Equal(t, 30, res.DamageDealt)
	assert.InDelta(t, s.Elapsed, res.Survived, 1e-9)
}

func TestSessionContactEvent(t *testing.T) {
	s := newTestSession(t, testSessionConfig())

	ev := s.contactEvent(ContactEvent{Kind: ContactEnemyHit, EnemyID: "e1", Damage: 30})
	assert.Equal(t, EventEnemyStunned, ev.Kind)
	assert.Equal(t, 0, s.Kills)

	ev = s.contactEvent(ContactEvent{Kind: ContactEnemyHit, EnemyID: "e1", Damage: 30, Lethal: true})
	assert.Equal(t, EventEnemyKilled, ev.Kind)
	assert.Equal(t, 0, s.Kills)
	assert.Equal(t, 60, s.DamageDealt)

	ev = s.contactEvent(ContactEvent{Kind: ContactPlayerHit, EnemyID: "e1", Damage: 5})
	assert.Equal(t, EventPlayerHit, ev.Kind)
	assert.Equal(t, 5, ev.Damage)
}

func TestSessionSnapshot(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Enemies = nil
	s := newTestSession(t, cfg)
	e := runningEnemy(geom.V(2, 3))
	s.Enemies = []*Enemy{e}

	snap := s.Snapshot()
	assert.Equal(t, 10.0, snap.Arena.Radius)
	assert.Equal(t, s.Player.ID, snap.Player.ID)
	assert.Equal(t, "idle", snap.Player.Phase)
	assert.Nil(t, snap.Player.DashTarget)
	require.Len(t, snap.Enemies, 1)
	assert.Equal(t, "running", snap.Enemies[0].State)
	assert.Equal(t, Point{X: 2, Y: 3}, snap.Enemies[0].Position)

	require.True(t, s.Player.PressAim())
	assert.Nil(t, s.Snapshot().Player.DashTarget, "no target while picking")
	require.True(t, s.Player.ReleaseAim(geom.V(0, 5)))
	target := s.Snapshot().Player.DashTarget
	require.NotNil(t, target)
	assert.InDelta(t, 8.0, target.Y, 1e-9)
}
