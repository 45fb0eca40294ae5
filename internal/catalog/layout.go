package catalog

import (
	"errors"
	"fmt"

	"github.com/ugaemi/arena-server/internal/game"
	"github.com/ugaemi/arena-server/internal/geom"
)

// ErrInvalidLayout is wrapped by every validation failure.
var ErrInvalidLayout = errors.New("invalid layout")

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p PointSpec) vec() geom.Vec {
	return geom.V(p.X, p.Y)
}

type ArenaSpec struct {
	Center PointSpec `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

type SpawnSpec struct {
	Rate       float64     `yaml:"rate"`
	MaxEnemies int         `yaml:"max_enemies"`
	Points     []PointSpec `yaml:"points"`
}

type PlayerSpec struct {
	MoveSpeed   float64 `yaml:"move_speed"`
	RotateSpeed float64 `yaml:"rotate_speed"`
	Health      int     `yaml:"health"`
	Damage      int     `yaml:"damage"`
	Radius      float64 `yaml:"radius"`
	HeadRadius  float64 `yaml:"head_radius"`
	HeadOffset  float64 `yaml:"head_offset"`
	DashInset   float64 `yaml:"dash_inset"`
}

type EnemySpec struct {
	Name       string  `yaml:"name"`
	Health     int     `yaml:"health"`
	Damage     int     `yaml:"damage"`
	Speed      float64 `yaml:"speed"`
	StunSpeed  float64 `yaml:"stun_speed"`
	StunTime   float64 `yaml:"stun_time"`
	AttackTime float64 `yaml:"attack_time"`
	Radius     float64 `yaml:"radius"`
}

// Layout is one arena file: the boundary, where and how often enemies appear,
// the player tuning and the enemy templates.
type Layout struct {
	Name    string      `yaml:"name"`
	Arena   ArenaSpec   `yaml:"arena"`
	Spawn   SpawnSpec   `yaml:"spawn"`
	Player  PlayerSpec  `yaml:"player"`
	Enemies []EnemySpec `yaml:"enemies"`
}

// applyDefaults fills the values a layout may leave out.
func (l *Layout) applyDefaults() {
	if l.Arena.Radius == 0 {
		l.Arena.Radius = game.DefaultArenaRadius
	}
	if l.Spawn.Rate == 0 {
		l.Spawn.Rate = game.DefaultSpawnRate
	}
	if l.Player.DashInset == 0 {
		l.Player.DashInset = game.DefaultDashInset
	}
}

// Validate checks every value the simulation relies on being positive.
func (l *Layout) Validate() error {
	if l.Arena.Radius <= 0 {
		return fmt.Errorf("%w: arena radius must be positive", ErrInvalidLayout)
	}
	if l.Spawn.Rate <= 0 {
		return fmt.Errorf("%w: spawn rate must be positive", ErrInvalidLayout)
	}
	if l.Spawn.MaxEnemies < 0 {
		return fmt.Errorf("%w: max_enemies must not be negative", ErrInvalidLayout)
	}

	p := l.Player
	if p.MoveSpeed <= 0 || p.RotateSpeed <= 0 {
		return fmt.Errorf("%w: player speeds must be positive", ErrInvalidLayout)
	}
	if p.Health <= 0 || p.Damage <= 0 {
		return fmt.Errorf("%w: player health and damage must be positive", ErrInvalidLayout)
	}
	if p.Radius <= 0 || p.HeadRadius <= 0 {
		return fmt.Errorf("%w: player radii must be positive", ErrInvalidLayout)
	}
	if p.DashInset < 0 || p.DashInset >= l.Arena.Radius {
		return fmt.Errorf("%w: dash_inset must be inside the arena", ErrInvalidLayout)
	}

	seen := make(map[string]bool, len(l.Enemies))
	for i, e := range l.Enemies {
		if e.Name == "" {
			return fmt.Errorf("%w: enemy %d has no name", ErrInvalidLayout, i)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: duplicate enemy %q", ErrInvalidLayout, e.Name)
		}
		seen[e.Name] = true

		if e.Health <= 0 || e.Damage <= 0 {
			return fmt.Errorf("%w: enemy %q health and damage must be positive", ErrInvalidLayout, e.Name)
		}
		if e.Speed <= 0 || e.StunSpeed <= 0 {
			return fmt.Errorf("%w: enemy %q speeds must be positive", ErrInvalidLayout, e.Name)
		}
		if e.AttackTime <= 0 || e.StunTime < 0 {
			return fmt.Errorf("%w: enemy %q timings are out of range", ErrInvalidLayout, e.Name)
		}
		if e.Radius <= 0 {
			return fmt.Errorf("%w: enemy %q radius must be positive", ErrInvalidLayout, e.Name)
		}
	}
	return nil
}

// SessionConfig converts the layout into what a game session is built from.
func (l *Layout) SessionConfig() game.SessionConfig {
	points := make([]geom.Vec, 0, len(l.Spawn.Points))
	for _, p := range l.Spawn.Points {
		points = append(points, p.vec())
	}

	templates := make([]game.EnemyTemplate, 0, len(l.Enemies))
	for _, e := range l.Enemies {
		templates = append(templates, game.EnemyTemplate{
			Kind:       e.Name,
			Health:     e.Health,
			Damage:     e.Damage,
			Speed:      e.Speed,
			StunSpeed:  e.StunSpeed,
			StunTime:   e.StunTime,
			AttackTime: e.AttackTime,
			Radius:     e.Radius,
		})
	}

	player := game.PlayerTemplate{
		MoveSpeed:   l.Player.MoveSpeed,
		RotateSpeed: l.Player.RotateSpeed,
		Health:      l.Player.Health,
		Damage:      l.Player.Damage,
		Radius:      l.Player.Radius,
		HeadRadius:  l.Player.HeadRadius,
		HeadOffset:  l.Player.HeadOffset,
		DashInset:   l.Player.DashInset,
	}

	return game.SessionConfig{
		Name:        l.Name,
		Arena:       game.Arena{Center: l.Arena.Center.vec(), Radius: l.Arena.Radius},
		Player:      player,
		Enemies:     templates,
		SpawnPoints: points,
		SpawnRate:   l.Spawn.Rate,
		MaxEnemies:  l.Spawn.MaxEnemies,
	}
}
