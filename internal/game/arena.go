package game

import (
	"errors"

	"github.com/ugaemi/arena-server/internal/geom"
)

// ErrInvalidRadius is returned when an arena is built with a non-positive radius.
var ErrInvalidRadius = errors.New("arena radius must be positive")

// Arena is the circular playable boundary. It is set once per session and never mutated.
type Arena struct {
	Center geom.Vec
	Radius float64
}

// NewArena validates and builds an arena.
func NewArena(center geom.Vec, radius float64) (Arena, error) {
	if radius <= 0 {
		return Arena{}, ErrInvalidRadius
	}
	return Arena{Center: center, Radius: radius}, nil
}

// Contains reports whether p lies inside or on the boundary.
func (a Arena) Contains(p geom.Vec) bool {
	return p.Distance(a.Center) <= a.Radius
}

// BoundaryTarget casts from `from` along `toward` and returns the point `inset`
// units short of where the ray leaves the arena. The ray is 2·Radius long so it
// always exits when it starts inside. It returns (from, false) when toward has no
// length or the ray never crosses the boundary.
func (a Arena) BoundaryTarget(from, toward geom.Vec, inset float64) (geom.Vec, bool) {
	dir := geom.Normalize(toward)
	if geom.IsZero(dir) {
		return from, false
	}

	seg := dir.Mult(a.Radius * 2)
	t, hit := geom.IntersectCircle(seg, from.Sub(a.Center), a.Radius)
	if !hit {
		return from, false
	}

	return from.Add(seg.Mult(t)).Sub(dir.Mult(inset)), true
}
