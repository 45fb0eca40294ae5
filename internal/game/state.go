package game

import "encoding/json"

type RoomState int

const (
	StateWaiting RoomState = iota
	StatePlaying
	StateEnded
)

func (s RoomState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EnemyState is the tag of the enemy state machine. EnemyIdle is the zero
// value and what unknown names decode to; spawned enemies start in
// EnemyEnteringArena and never return to it.
type EnemyState int

const (
	EnemyIdle EnemyState = iota
	EnemyEnteringArena
	EnemyRunning
	EnemyStunned
	EnemyExitingArena
)

func (s EnemyState) String() string {
	switch s {
	case EnemyIdle:
		return "idle"
	case EnemyEnteringArena:
		return "entering_arena"
	case EnemyRunning:
		return "running"
	case EnemyStunned:
		return "stunned"
	case EnemyExitingArena:
		return "exiting_arena"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes EnemyState as a string.
func (s EnemyState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes EnemyState from a string. Unknown names become EnemyIdle.
func (s *EnemyState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "entering_arena":
		*s = EnemyEnteringArena
	case "running":
		*s = EnemyRunning
	case "stunned":
		*s = EnemyStunned
	case "exiting_arena":
		*s = EnemyExitingArena
	default:
		*s = EnemyIdle
	}
	return nil
}

// Transition holds the running state and the state requested for the next
// action boundary. Requests overwrite each other; only the latest one is applied.
type Transition struct {
	Current   EnemyState
	Requested EnemyState
}

// Pending reports whether a different state has been requested.
func (t Transition) Pending() bool {
	return t.Current != t.Requested
}

// ApplyIfPending promotes the requested state to the current one.
func (t Transition) ApplyIfPending() Transition {
	if !t.Pending() {
		return t
	}
	return Transition{Current: t.Requested, Requested: t.Requested}
}

// DashPhase is the player's position in the aim-and-dash sequence.
type DashPhase int

const (
	DashIdle DashPhase = iota
	DashPicking
	DashTurning
	DashMoving
	DashRecentering
)

func (p DashPhase) String() string {
	switch p {
	case DashIdle:
		return "idle"
	case DashPicking:
		return "picking"
	case DashTurning:
		return "turning"
	case DashMoving:
		return "moving"
	case DashRecentering:
		return "recentering"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes DashPhase as a string.
func (p DashPhase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
