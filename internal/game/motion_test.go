package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ugaemi/arena-server/internal/geom"
)

func TestTimerAdvance(t *testing.T) {
	tm := timer{duration: 1}

	f, done := tm.advance(0.25)
	assert.InDelta(t, 0.25, f, 1e-9)
	assert.False(t, done)

	f, done = tm.advance(0.75)
	assert.InDelta(t, 1.0, f, 1e-9)
	assert.True(t, done)
}

func TestTimerAdvance_ZeroDuration(t *testing.T) {
	tm := timer{}
	f, done := tm.advance(0)
	assert.Equal(t, 1.0, f)
	assert.True(t, done)
}

func TestMoveSegment(t *testing.T) {
	m := &Mover{Position: geom.V(0, 0)}
	seg := newMoveSegment(geom.V(0, 0), geom.V(4, 0), 2)
	assert.InDelta(t, 2.0, seg.duration, 1e-9)

	assert.False(t, seg.advance(m, 1))
	assert.InDelta(t, 2.0, m.Position.X, 1e-9)

	assert.True(t, seg.advance(m, 1.5))
	assert.InDelta(t, 4.0, m.Position.X, 1e-9, "overshoot clamps to the end point")
}

func TestMoveSegment_NoSpeed(t *testing.T) {
	m := &Mover{Position: geom.V(0, 0)}
	seg := newMoveSegment(geom.V(0, 0), geom.V(4, 0), 0)

	assert.True(t, seg.advance(m, 0.1))
	assert.Equal(t, geom.V(4, 0), m.Position)
}

func TestRotateSegment(t *testing.T) {
	m := &Mover{Position: geom.V(0, 0), RotateSpeed: 90}
	seg := newRotateSegment(m, geom.V(1, 0))
	assert.InDelta(t, -90.0, seg.delta, 1e-9)
	assert.InDelta(t, 1.0, seg.duration, 1e-9)

	assert.False(t, seg.advance(m, 0.5))
	assert.InDelta(t, -45.0, m.Rotation, 1e-9)

	assert.True(t, seg.advance(m, 0.5))
	assert.InDelta(t, 270.0, m.Rotation, 1e-9)
	assert.InDelta(t, 1.0, m.Up().X, 1e-9)
	assert.InDelta(t, 0.0, m.Up().Y, 1e-9)
}

func TestFaceToward(t *testing.T) {
	tests := []struct {
		name   string
		target geom.Vec
		wantUp geom.Vec
	}{
		{"right", geom.V(3, 0), geom.V(1, 0)},
		{"left", geom.V(-3, 0), geom.V(-1, 0)},
		{"down", geom.V(0, -2), geom.V(0, -1)},
		{"up-left", geom.V(-1, 1), geom.V(-0.7071067811865476, 0.7071067811865476)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mover{Rotation: 30}
			m.FaceToward(tt.target)
			assert.InDelta(t, tt.wantUp.X, m.Up().X, 1e-9)
			assert.InDelta(t, tt.wantUp.Y, m.Up().Y, 1e-9)
			assert.GreaterOrEqual(t, m.Rotation, 0.0)
			assert.Less(t, m.Rotation, 360.0)
		})
	}
}

func TestFaceToward_TargetOnMover(t *testing.T) {
	m := &Mover{Position: geom.V(2, 2), Rotation: 45}
	m.FaceToward(geom.V(2, 2))
	assert.Equal(t, 45.0, m.Rotation)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.InDelta(t, 270.0, normalizeDegrees(-90), 1e-9)
	assert.InDelta(t, 0.0, normalizeDegrees(720), 1e-9)
	assert.InDelta(t, 10.0, normalizeDegrees(370), 1e-9)
	assert.Equal(t, 0.0, travelTime(5, 0))
	assert.Equal(t, 2.5, travelTime(5, 2))
}
