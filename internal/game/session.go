package game

import (
	"fmt"

	"github.com/ugaemi/arena-server/internal/geom"
)

// SessionConfig is everything a session is built from.
type SessionConfig struct {
	Name        string // layout name, carried into run records
	Arena       Arena
	Player      PlayerTemplate
	Enemies     []EnemyTemplate
	SpawnPoints []geom.Vec
	SpawnRate   float64
	MaxEnemies  int // 0 means unlimited
}

type EventKind string

const (
	EventEnemySpawned EventKind = "enemy_spawned"
	EventEnemyStunned EventKind = "enemy_stunned"
	EventEnemyKilled  EventKind = "enemy_killed"
	EventEnemyRemoved EventKind = "enemy_removed"
	EventPlayerHit    EventKind = "player_hit"
	EventPlayerDied   EventKind = "player_died"
)

// Event is something clients may want to react to, emitted by Step.
type Event struct {
	Kind    EventKind `json:"kind"`
	EnemyID string    `json:"enemy_id,omitempty"`
	Damage  int       `json:"damage,omitempty"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
}

// Session is one arena run: a player, the enemies chasing it and the spawner
// feeding them. Every collaborator is injected; nothing is looked up.
type Session struct {
	Arena   Arena
	Player  *Player
	Enemies []*Enemy
	Spawner *Spawner

	Tick        uint64
	Elapsed     float64
	Kills       int
	DamageDealt int
	Over        bool

	rnd        Rand
	maxEnemies int
}

// NewSession validates cfg, spawns player at the arena center and returns a ready session.
func NewSession(cfg SessionConfig, player *Player, rnd Rand) (*Session, error) {
	arena, err := NewArena(cfg.Arena.Center, cfg.Arena.Radius)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("new session: player is required")
	}
	if rnd == nil {
		return nil, fmt.Errorf("new session: random source is required")
	}
	player.Spawn(arena, cfg.Player)

	return &Session{
		Arena:      arena,
		Player:     player,
		Spawner:    NewSpawner(cfg.Enemies, cfg.SpawnPoints, cfg.SpawnRate),
		rnd:        rnd,
		maxEnemies: cfg.MaxEnemies,
	}, nil
}

// Step advances the whole session by dt and returns what happened.
func (s *Session) Step(dt float64) []Event {
	if s.Over {
		return nil
	}
	s.Tick++
	s.Elapsed += dt

	s.Player.Step(dt)

	env := Env{Arena: s.Arena, Target: s.Player.Position, Rand: s.rnd}
	for _, e := range s.Enemies {
		e.Step(dt, env)
	}

	var events []Event
	for _, c := range ProcessContacts(s.Player, s.Enemies, dt) {
		events = append(events, s.contactEvent(c))
	}

	for _, e := range s.Spawner.Update(dt, s.rnd) {
		if s.maxEnemies > 0 && len(s.Enemies) >= s.maxEnemies {
			continue
		}
		s.Enemies = append(s.Enemies, e)
		events = append(events, Event{Kind: EventEnemySpawned, EnemyID: e.ID, X: e.Position.X, Y: e.Position.Y})
	}

	events = append(events, s.prune()...)

	if s.Player.IsDead() {
		s.Over = true
		events = append(events, Event{Kind: EventPlayerDied, X: s.Player.Position.X, Y: s.Player.Position.Y})
	}
	return events
}

func (s *Session) contactEvent(c ContactEvent) Event {
	switch c.Kind {
	case ContactEnemyHit:
		s.DamageDealt += c.Damage
		kind := EventEnemyStunned
		if c.Lethal {
			kind = EventEnemyKilled
		}
		return Event{Kind: kind, EnemyID: c.EnemyID, Damage: c.Damage, X: s.Player.Position.X, Y: s.Player.Position.Y}
	default:
		return Event{Kind: EventPlayerHit, EnemyID: c.EnemyID, Damage: c.Damage, X: s.Player.Position.X, Y: s.Player.Position.Y}
	}
}

// prune drops enemies that finished leaving the arena. A kill counts once the
// dead enemy's exit is over.
func (s *Session) prune() []Event {
	var events []Event
	kept := s.Enemies[:0]
	for _, e := range s.Enemies {
		if e.Active {
			kept = append(kept, e)
			continue
		}
		if e.Health == 0 {
			s.Kills++
		}
		events = append(events, Event{Kind: EventEnemyRemoved, EnemyID: e.ID, X: e.Position.X, Y: e.Position.Y})
	}
	for i := len(kept); i < len(s.Enemies); i++ {
		s.Enemies[i] = nil
	}
	s.Enemies = kept
	return events
}

// FindEnemy returns the enemy with the given id.
func (s *Session) FindEnemy(id string) *Enemy {
	for _, e := range s.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Result summarizes a run.
type Result struct {
	Kills       int     `json:"kills"`
	Survived    float64 `json:"survived"`
	Dashes      int     `json:"dashes"`
	DamageDealt int     `json:"damage_dealt"`
}

// Result returns the run summary so far.
func (s *Session) Result() Result {
	return Result{
		Kills:       s.Kills,
		Survived:    s.Elapsed,
		Dashes:      s.Player.DashCount(),
		DamageDealt: s.DamageDealt,
	}
}
