package game

import "time"

// Game timing
const (
	TickRate     = 30 // ticks per second
	TickInterval = time.Second / TickRate
	ResetDelay   = 5 * time.Second
)

// Room limits
const (
	MaxSpectators = 8
)

// Enemy entry and stun
const (
	EnterDistance = 2.0 // units walked inward after spawning
	StunInset     = 1.0 // knockback stops this far inside the boundary
)

// Death animation: the enemy flies away from the player and grows.
const (
	ExitDuration    = 3.0 // seconds
	ExitScale       = 20.0
	ExitDistanceMin = 10.0
	ExitDistanceMax = 30.0
	ExitRenderOrder = 3
)

// Defaults used when a layout leaves a value out.
const (
	DefaultArenaRadius = 10.0
	DefaultSpawnRate   = 3.0 // seconds between spawns
	DefaultDashInset   = 2.0
)
