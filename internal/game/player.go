package game

import (
	"github.com/google/uuid"
	"github.com/ugaemi/arena-server/internal/geom"
)

// PlayerTemplate is the tuning a player starts a session with.
type PlayerTemplate struct {
	MoveSpeed   float64 // units per second while dashing
	RotateSpeed float64 // degrees per second
	Health      int
	Damage      int
	Radius      float64
	HeadRadius  float64
	HeadOffset  float64 // distance of the head center along the facing direction
	DashInset   float64 // the dash stops this far inside the boundary
}

// Player is the dashing character. A dash is a press/release gesture followed
// by turn, move and recenter segments; a new gesture is rejected until the
// sequence finishes.
type Player struct {
	ID       string
	Nickname string
	Mover

	Health     int
	MaxHealth  int
	Damage     int
	Radius     float64
	HeadRadius float64
	HeadOffset float64
	DashInset  float64
	Phase      DashPhase

	arena     Arena
	dashEnd   geom.Vec
	turn      *rotateSegment
	move      *moveSegment
	recenter  *rotateSegment
	dashCount int
}

// NewPlayer creates a player with a fresh id.
func NewPlayer(nickname string) *Player {
	return &Player{
		ID:       uuid.New().String(),
		Nickname: nickname,
		Phase:    DashIdle,
		Mover:    Mover{Scale: 1},
	}
}

// Spawn places the player at the arena center with the given tuning and
// clears any dash in flight.
func (p *Player) Spawn(arena Arena, tpl PlayerTemplate) {
	p.arena = arena
	p.Mover = Mover{
		Position:    arena.Center,
		Speed:       tpl.MoveSpeed,
		RotateSpeed: tpl.RotateSpeed,
		Scale:       1,
	}
	p.Health = tpl.Health
	p.MaxHealth = tpl.Health
	p.Damage = tpl.Damage
	p.Radius = tpl.Radius
	p.HeadRadius = tpl.HeadRadius
	p.HeadOffset = tpl.HeadOffset
	p.DashInset = tpl.DashInset
	p.Phase = DashIdle
	p.turn, p.move, p.recenter = nil, nil, nil
	p.dashCount = 0
}

// Head returns the center of the player's damaging part.
func (p *Player) Head() geom.Vec {
	return p.Position.Add(p.Up().Mult(p.HeadOffset))
}

// IsMoving reports whether the player is in the move segment of a dash.
func (p *Player) IsMoving() bool {
	return p.Phase == DashMoving
}

// Dashing reports whether a gesture or dash is in progress.
func (p *Player) Dashing() bool {
	return p.Phase != DashIdle
}

// DashCount returns how many dashes were started this session.
func (p *Player) DashCount() int {
	return p.dashCount
}

// DashTarget returns the end point of the current or last dash.
func (p *Player) DashTarget() geom.Vec {
	return p.dashEnd
}

// PressAim starts a direction pick. It is rejected while a dash is in progress.
func (p *Player) PressAim() bool {
	if p.Phase != DashIdle || p.Health <= 0 {
		return false
	}
	p.Phase = DashPicking
	return true
}

// ReleaseAim finishes a direction pick toward point and starts the dash.
// It returns false when no pick is in progress or the point gives no direction
// that leaves the arena; the player is idle again in that case.
func (p *Player) ReleaseAim(point geom.Vec) bool {
	if p.Phase != DashPicking {
		return false
	}
	end, ok := p.arena.BoundaryTarget(p.Position, point.Sub(p.Position), p.DashInset)
	if !ok {
		p.Phase = DashIdle
		return false
	}
	p.dashEnd = end
	p.turn = newRotateSegment(&p.Mover, end)
	p.move, p.recenter = nil, nil
	p.Phase = DashTurning
	p.dashCount++
	return true
}

// Step advances the dash by dt. Each segment is built when it starts so it
// measures from where the previous one ended.
func (p *Player) Step(dt float64) {
	switch p.Phase {
	case DashTurning:
		if p.turn.advance(&p.Mover, dt) {
			p.turn = nil
			p.move = newMoveSegment(p.Position, p.dashEnd, p.Speed)
			p.Phase = DashMoving
		}
	case DashMoving:
		if p.move.advance(&p.Mover, dt) {
			p.move = nil
			p.recenter = newRotateSegment(&p.Mover, p.arena.Center)
			p.Phase = DashRecentering
		}
	case DashRecentering:
		if p.recenter.advance(&p.Mover, dt) {
			p.recenter = nil
			p.Phase = DashIdle
		}
	}
}

// ReceiveDamage subtracts amount from health, clamped at zero.
func (p *Player) ReceiveDamage(amount int) {
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
}

// IsDead reports whether the player has no health left.
func (p *Player) IsDead() bool {
	return p.Health <= 0
}
