package game

import "github.com/ugaemi/arena-server/internal/geom"

// Point is the wire form of a position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v geom.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Snapshot is the per-tick view of a session sent to clients.
type Snapshot struct {
	Tick    uint64      `json:"tick"`
	Elapsed float64     `json:"elapsed"`
	Kills   int         `json:"kills"`
	Arena   ArenaView   `json:"arena"`
	Player  PlayerView  `json:"player"`
	Enemies []EnemyView `json:"enemies"`
}

type ArenaView struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

type PlayerView struct {
	ID         string  `json:"id"`
	Position   Point   `json:"position"`
	Rotation   float64 `json:"rotation"`
	Health     int     `json:"health"`
	MaxHealth  int     `json:"max_health"`
	Phase      string  `json:"phase"`
	DashTarget *Point  `json:"dash_target,omitempty"`
}

type EnemyView struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	Position    Point   `json:"position"`
	Rotation    float64 `json:"rotation"`
	Scale       float64 `json:"scale"`
	Health      int     `json:"health"`
	State       string  `json:"state"`
	RenderOrder int     `json:"render_order"`
}

// Snapshot builds the wire view of the session.
func (s *Session) Snapshot() Snapshot {
	p := s.Player
	pv := PlayerView{
		ID:        p.ID,
		Position:  pointOf(p.Position),
		Rotation:  p.Rotation,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Phase:     p.Phase.String(),
	}
	if p.Dashing() && p.Phase != DashPicking {
		target := pointOf(p.DashTarget())
		pv.DashTarget = &target
	}

	enemies := make([]EnemyView, 0, len(s.Enemies))
	for _, e := range s.Enemies {
		enemies = append(enemies, EnemyView{
			ID:          e.ID,
			Kind:        e.Kind,
			Position:    pointOf(e.Position),
			Rotation:    e.Rotation,
			Scale:       e.Scale,
			Health:      e.Health,
			State:       e.State().String(),
			RenderOrder: e.RenderOrder,
		})
	}

	return Snapshot{
		Tick:    s.Tick,
		Elapsed: s.Elapsed,
		Kills:   s.Kills,
		Arena:   ArenaView{Center: pointOf(s.Arena.Center), Radius: s.Arena.Radius},
		Player:  pv,
		Enemies: enemies,
	}
}
