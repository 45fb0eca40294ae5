package game

import (
	"math"

	"github.com/ugaemi/arena-server/internal/geom"
)

// Mover is the transform shared by the player and enemies.
type Mover struct {
	Position    geom.Vec
	Rotation    float64 // degrees, counter-clockwise about +z
	Speed       float64 // units per second
	RotateSpeed float64 // degrees per second
	Scale       float64
}

// Up is the mover's facing direction.
func (m *Mover) Up() geom.Vec {
	return geom.Up(m.Rotation)
}

// FaceToward snaps the rotation so Up points at target. A target on top of the
// mover leaves the rotation alone.
func (m *Mover) FaceToward(target geom.Vec) {
	m.Rotation = normalizeDegrees(m.Rotation + geom.ShortestRotationAngle(target.Sub(m.Position), m.Up()))
}

// timer is the elapsed/duration pair shared by every timed action.
type timer struct {
	elapsed  float64
	duration float64
}

// advance adds dt and returns the progress fraction and whether the timer is done.
// A zero duration finishes immediately at fraction 1.
func (t *timer) advance(dt float64) (float64, bool) {
	t.elapsed += dt
	if t.duration <= 0 {
		return 1, true
	}
	return t.elapsed / t.duration, t.elapsed >= t.duration
}

// moveSegment interpolates a position linearly over a fixed duration.
type moveSegment struct {
	from, to geom.Vec
	timer
}

// newMoveSegment builds a segment that covers from→to at speed units per second.
func newMoveSegment(from, to geom.Vec, speed float64) *moveSegment {
	return &moveSegment{from: from, to: to, timer: timer{duration: travelTime(from.Distance(to), speed)}}
}

func (s *moveSegment) advance(m *Mover, dt float64) bool {
	f, done := s.timer.advance(dt)
	m.Position = geom.Lerp(s.from, s.to, f)
	return done
}

// rotateSegment interpolates a rotation linearly over a fixed duration.
type rotateSegment struct {
	from, delta float64
	timer
}

// newRotateSegment builds a segment that turns m to face target at its rotate speed.
func newRotateSegment(m *Mover, target geom.Vec) *rotateSegment {
	delta := geom.ShortestRotationAngle(target.Sub(m.Position), m.Up())
	return &rotateSegment{
		from:  m.Rotation,
		delta: delta,
		timer: timer{duration: travelTime(math.Abs(delta), m.RotateSpeed)},
	}
}

func (s *rotateSegment) advance(m *Mover, dt float64) bool {
	f, done := s.timer.advance(dt)
	m.Rotation = geom.LerpFloat(s.from, s.from+s.delta, f)
	if done {
		m.Rotation = normalizeDegrees(m.Rotation)
	}
	return done
}

// travelTime returns distance/speed, or 0 when the speed is not positive.
func travelTime(distance, speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return distance / speed
}

// normalizeDegrees maps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
