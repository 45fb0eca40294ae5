package game

import (
	"math"

	"github.com/google/uuid"
	"github.com/ugaemi/arena-server/internal/geom"
)

// EnemyTemplate is the tuning an enemy is spawned from.
type EnemyTemplate struct {
	Kind       string
	Health     int
	Damage     int
	Speed      float64 // units per second while entering and running
	StunSpeed  float64 // units per second while knocked back
	StunTime   float64 // seconds spent recovering after knockback
	AttackTime float64 // seconds of contact between strikes on the player
	Radius     float64
}

// Env is the read-only view of the world an enemy acts against.
type Env struct {
	Arena  Arena
	Target geom.Vec
	Rand   Rand
}

// Enemy is a mover driven by a state machine. Each state runs one action to
// completion; the requested state is only applied once that action has ended.
type Enemy struct {
	ID   string
	Kind string
	Mover

	Health     int
	MaxHealth  int
	Damage     int
	StunSpeed  float64
	StunTime   float64
	AttackTime float64
	Radius     float64

	Active      bool
	Collidable  bool
	RenderOrder int

	Transition Transition

	damageSource geom.Vec
	action       enemyAction
	actionDone   bool
	attackTimer  float64
	inContact    bool
}

// NewEnemy creates an enemy at pos that will walk into the arena and then chase.
func NewEnemy(tpl EnemyTemplate, pos geom.Vec) *Enemy {
	return &Enemy{
		ID:   uuid.New().String(),
		Kind: tpl.Kind,
		Mover: Mover{
			Position: pos,
			Speed:    tpl.Speed,
			Scale:    1,
		},
		Health:     tpl.Health,
		MaxHealth:  tpl.Health,
		Damage:     tpl.Damage,
		StunSpeed:  tpl.StunSpeed,
		StunTime:   tpl.StunTime,
		AttackTime: tpl.AttackTime,
		Radius:     tpl.Radius,
		Active:     true,
		Collidable: true,
		Transition: Transition{Current: EnemyEnteringArena, Requested: EnemyRunning},
		// The first contact strikes at once; separations reset this to zero.
		attackTimer: math.MaxFloat64,
	}
}

// State returns the state whose action is running.
func (e *Enemy) State() EnemyState {
	return e.Transition.Current
}

// Staggered reports whether the enemy is stunned, dying, or about to be.
// Staggered enemies take no part in contact damage.
func (e *Enemy) Staggered() bool {
	switch {
	case e.Transition.Current == EnemyStunned, e.Transition.Current == EnemyExitingArena:
		return true
	case e.Transition.Requested == EnemyStunned, e.Transition.Requested == EnemyExitingArena:
		return true
	}
	return false
}

// ReceiveDamage subtracts amount from health, clamped at zero, and requests
// ExitingArena on death or Stunned otherwise. source is where the hit came from.
// Damage is ignored once the enemy is leaving the arena.
func (e *Enemy) ReceiveDamage(amount int, source geom.Vec) {
	if e.Transition.Current == EnemyExitingArena {
		return
	}
	e.damageSource = source
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		e.Transition.Requested = EnemyExitingArena
		return
	}
	e.Transition.Requested = EnemyStunned
}

// Step advances the enemy by dt. Pending transitions are applied only at the
// top of the loop, after the previous action has finished.
func (e *Enemy) Step(dt float64, env Env) {
	if !e.Active {
		return
	}
	if e.action == nil {
		if e.actionDone {
			e.Transition = e.Transition.ApplyIfPending()
			e.actionDone = false
		}
		e.action = e.beginAction(env)
	}
	if e.action.step(e, dt) {
		e.action = nil
		e.actionDone = true
	}
}

// enemyAction is one timed action of a state. step returns true when the action is over.
type enemyAction interface {
	step(e *Enemy, dt float64) bool
}

func (e *Enemy) beginAction(env Env) enemyAction {
	switch e.Transition.Current {
	case EnemyEnteringArena:
		e.FaceToward(env.Arena.Center)
		return &enterAction{remaining: EnterDistance}
	case EnemyRunning:
		return &runAction{target: env.Target}
	case EnemyStunned:
		e.Transition.Requested = EnemyRunning
		target, ok := env.Arena.BoundaryTarget(e.Position, e.Position.Sub(e.damageSource), StunInset)
		if !ok {
			target = e.Position
		}
		return &stunAction{
			knockback: newMoveSegment(e.Position, target, e.StunSpeed),
			recovery:  timer{duration: e.StunTime},
		}
	case EnemyExitingArena:
		e.Collidable = false
		e.RenderOrder = ExitRenderOrder
		dir := geom.Normalize(e.Position.Sub(e.damageSource))
		distance := ExitDistanceMin
		if env.Rand != nil {
			distance += env.Rand.Float64() * (ExitDistanceMax - ExitDistanceMin)
		}
		return &exitAction{
			from:      e.Position,
			to:        e.Position.Add(dir.Mult(distance)),
			fromScale: e.Scale,
			timer:     timer{duration: ExitDuration},
		}
	default:
		return idleAction{}
	}
}

// idleAction holds an idle enemy in place for one tick so a requested state
// is picked up at the next boundary.
type idleAction struct{}

func (idleAction) step(*Enemy, float64) bool { return true }

// enterAction walks a fixed distance along the facing direction.
type enterAction struct {
	remaining float64
}

func (a *enterAction) step(e *Enemy, dt float64) bool {
	stride := e.Speed * dt
	if stride <= 0 {
		return e.Speed <= 0
	}
	if stride > a.remaining {
		stride = a.remaining
	}
	e.Position = e.Position.Add(e.Up().Mult(stride))
	a.remaining -= stride
	return a.remaining <= 0
}

// runAction is a single chase step; it completes every tick.
type runAction struct {
	target geom.Vec
}

func (a *runAction) step(e *Enemy, dt float64) bool {
	dir := geom.Normalize(a.target.Sub(e.Position))
	if geom.IsZero(dir) {
		return true
	}
	e.FaceToward(a.target)
	e.Position = e.Position.Add(dir.Mult(e.Speed * dt))
	return true
}

// stunAction slides to the knockback target, then waits out the recovery.
type stunAction struct {
	knockback *moveSegment
	recovery  timer
}

func (a *stunAction) step(e *Enemy, dt float64) bool {
	if a.knockback != nil {
		if a.knockback.advance(&e.Mover, dt) {
			a.knockback = nil
		}
		return false
	}
	_, done := a.recovery.advance(dt)
	return done
}

// exitAction flies the enemy away while it grows, then deactivates it for good.
type exitAction struct {
	from, to  geom.Vec
	fromScale float64
	timer
}

func (a *exitAction) step(e *Enemy, dt float64) bool {
	f, done := a.timer.advance(dt)
	e.Position = geom.Lerp(a.from, a.to, f)
	e.Scale = geom.LerpFloat(a.fromScale, ExitScale, f)
	if done {
		e.Active = false
	}
	return done
}
