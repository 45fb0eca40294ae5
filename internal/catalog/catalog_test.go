package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugaemi/arena-server/internal/game"
	"github.com/ugaemi/arena-server/internal/geom"
)

const smallLayout = `
name: small
arena:
  center: { x: 1, y: 2 }
  radius: 5
spawn:
  rate: 1.5
  max_enemies: 3
  points:
    - { x: 1, y: 9 }
player:
  move_speed: 10
  rotate_speed: 360
  health: 50
  damage: 25
  radius: 0.5
  head_radius: 0.3
  head_offset: 0.5
enemies:
  - name: grunt
    health: 100
    damage: 5
    speed: 2
    stun_speed: 20
    stun_time: 5
    attack_time: 3
    radius: 0.5
`

func writeLayout(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestNew_Embedded(t *testing.T) {
	c, err := New("", "")
	require.NoError(t, err)

	l := c.Layout()
	assert.Equal(t, "default", l.Name)
	assert.Equal(t, 10.0, l.Arena.Radius)
	assert.NotEmpty(t, l.Enemies)
	assert.NotEmpty(t, l.Spawn.Points)

	cfg := c.SessionConfig()
	assert.Equal(t, "grunt", cfg.Enemies[0].Kind)
	assert.Equal(t, 100, cfg.Enemies[0].Health)
	assert.Equal(t, 5, cfg.Enemies[0].Damage)
	assert.Equal(t, 3.0, cfg.SpawnRate)
}

func TestNew_DiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, DefaultLayout, smallLayout)

	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, "small", c.Layout().Name)
}

func TestNew_FallsBackToEmbedded(t *testing.T) {
	c, err := New(t.TempDir(), DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, "default", c.Layout().Name)
}

func TestNew_UnreadableOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultLayout), 0o755))

	_, err := New(dir, DefaultLayout)
	assert.Error(t, err)
}

func TestNew_UnknownLayout(t *testing.T) {
	_, err := New(t.TempDir(), "missing.yaml")
	assert.Error(t, err)
}

func TestSessionConfig(t *testing.T) {
	l, err := Parse([]byte(smallLayout))
	require.NoError(t, err)

	cfg := l.SessionConfig()
	assert.Equal(t, game.Arena{Center: geom.V(1, 2), Radius: 5}, cfg.Arena)
	assert.Equal(t, []geom.Vec{geom.V(1, 9)}, cfg.SpawnPoints)
	assert.Equal(t, 1.5, cfg.SpawnRate)
	assert.Equal(t, 3, cfg.MaxEnemies)
	assert.Equal(t, 50, cfg.Player.Health)
	assert.Equal(t, 25, cfg.Player.Damage)
	assert.Equal(t, game.DefaultDashInset, cfg.Player.DashInset, "default applied")
	require.Len(t, cfg.Enemies, 1)
	assert.Equal(t, game.EnemyTemplate{
		Kind:       "grunt",
		Health:     100,
		Damage:     5,
		Speed:      2,
		StunSpeed:  20,
		StunTime:   5,
		AttackTime: 3,
		Radius:     0.5,
	}, cfg.Enemies[0])

	_, err = game.NewSession(cfg, game.NewPlayer("p"), fixedRand{})
	assert.NoError(t, err)
}

type fixedRand struct{}

func (fixedRand) Float64() float64 { return 0 }
func (fixedRand) Intn(int) int { return 0 }

func TestParse_Invalid(t *testing.T) {
	valid, err := Parse([]byte(smallLayout))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"negative radius", func(l *Layout) { l.Arena.Radius = -1 }},
		{"negative spawn rate", func(l *Layout) { l.Spawn.Rate = -1 }},
		{"negative max enemies", func(l *Layout) { l.Spawn.MaxEnemies = -1 }},
		{"player without speed", func(l *Layout) { l.Player.MoveSpeed = 0 }},
		{"player without health", func(l *Layout) { l.Player.Health = 0 }},
		{"dash inset past the arena", func(l *Layout) { l.Player.DashInset = 5 }},
		{"unnamed enemy", func(l *Layout) { l.Enemies[0].Name = "" }},
		{"duplicate enemy", func(l *Layout) { l.Enemies = append(l.Enemies, l.Enemies[0]) }},
		{"enemy without health", func(l *Layout) { l.Enemies[0].Health = 0 }},
		{"enemy without stun speed", func(l *Layout) { l.Enemies[0].StunSpeed = 0 }},
		{"enemy without attack time", func(l *Layout) { l.Enemies[0].AttackTime = 0 }},
		{"enemy without radius", func(l *Layout) { l.Enemies[0].Radius = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := *valid
			l.Enemies = append([]EnemySpec(nil), valid.Enemies...)
			tt.mutate(&l)
			assert.ErrorIs(t, l.Validate(), ErrInvalidLayout)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("arena: [unclosed"))
	assert.Error(t, err)
}

func TestReload_KeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, DefaultLayout, smallLayout)

	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)

	writeLayout(t, dir, DefaultLayout, "name: broken\narena:\n  radius: -3\n")
	assert.ErrorIs(t, c.Reload(), ErrInvalidLayout)
	assert.Equal(t, "small", c.Layout().Name)
}

func TestReload_MissingDiskFileKeepsLayout(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, DefaultLayout, smallLayout)

	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, DefaultLayout)))
	assert.ErrorIs(t, c.Reload(), fs.ErrNotExist)
	assert.Equal(t, "small", c.Layout().Name)
}

func TestReload_PicksUpNewDiskFile(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)
	require.Equal(t, "default", c.Layout().Name)

	writeLayout(t, dir, DefaultLayout, smallLayout)
	require.NoError(t, c.Reload())
	assert.Equal(t, "small", c.Layout().Name)

	require.NoError(t, os.Remove(filepath.Join(dir, DefaultLayout)))
	assert.Error(t, c.Reload())
	assert.Equal(t, "small", c.Layout().Name)
}

func TestWatcher_Reloads(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, DefaultLayout, smallLayout)

	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)

	w, err := NewWatcher(c)
	require.NoError(t, err)
	defer w.Close()

	writeLayout(t, dir, "notes.txt", "ignored")
	writeLayout(t, dir, DefaultLayout, "name: renamed\n"+smallLayout[len("\nname: small\n"):])

	assert.Eventually(t, func() bool {
		return c.Layout().Name == "renamed"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_BadFileKeepsLayout(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, DefaultLayout, smallLayout)

	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)

	w, err := NewWatcher(c)
	require.NoError(t, err)
	defer w.Close()

	writeLayout(t, dir, DefaultLayout, "arena: [unclosed")

	select {
	case err := <-w.Reloaded:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after write")
	}
	assert.Equal(t, "small", c.Layout().Name)
}

func TestWatcher_RenameAwayKeepsLayout(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, DefaultLayout, smallLayout)

	c, err := New(dir, DefaultLayout)
	require.NoError(t, err)

	w, err := NewWatcher(c)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Rename(filepath.Join(dir, DefaultLayout), filepath.Join(dir, DefaultLayout+".bak")))

	select {
	case err := <-w.Reloaded:
		assert.ErrorIs(t, err, fs.ErrNotExist)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after rename")
	}
	assert.Equal(t, "small", c.Layout().Name)
}

func TestWatcher_CloseTwice(t *testing.T) {
	c, err := New(t.TempDir(), DefaultLayout)
	require.NoError(t, err)

	w, err := NewWatcher(c)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
