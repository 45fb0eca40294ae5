package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vec is a 2D position or direction. The z axis is implicit and always 0.
type Vec = cp.Vector

// epsilon below which a vector is treated as zero length.
const epsilon = 1e-12

// V builds a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// IsZero reports whether v has (numerically) zero length.
func IsZero(v Vec) bool {
	return v.LengthSq() < epsilon*epsilon
}

// Normalize returns v scaled to unit length, or the zero vector when v has no length.
func Normalize(v Vec) Vec {
	l := v.Length()
	if l < epsilon {
		return Vec{}
	}
	return v.Mult(1 / l)
}

// Rotate rotates v counter-clockwise about +z by deg degrees.
func Rotate(v Vec, deg float64) Vec {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Vec{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// Up returns the local +y axis of a body rotated rotation degrees about +z.
func Up(rotation float64) Vec {
	return Rotate(Vec{X: 0, Y: 1}, rotation)
}

// Lerp interpolates between a and b. f is clamped to [0, 1].
func Lerp(a, b Vec, f float64) Vec {
	return a.Lerp(b, clamp01(f))
}

// LerpFloat interpolates between a and b. f is clamped to [0, 1].
func LerpFloat(a, b, f float64) float64 {
	f = clamp01(f)
	return a + (b-a)*f
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ShortestRotationAngle returns the signed angle in degrees that rotates up onto
// direction about +z. The magnitude is the unsigned angle between the vectors and
// the sign follows the z component of cross(up, direction), so the result lies in
// (-180, 180]. Inputs are normalized here; a zero-length input yields 0.
func ShortestRotationAngle(direction, up Vec) float64 {
	direction = Normalize(direction)
	up = Normalize(up)
	if IsZero(direction) || IsZero(up) {
		return 0
	}

	dot := up.Dot(direction)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	angle := math.Acos(dot) * 180 / math.Pi

	// Exactly opposite vectors stay at +180 whatever the rounding of the cross product.
	if angle < 180 && up.Cross(direction) < 0 {
		angle = -angle
	}
	return angle
}

// IntersectCircle intersects the segment starting at originOffset with extent
// direction against a circle of the given radius centered at the origin.
//
// It solves a·t² + b·t + c = 0 and returns the parametric t in [0, 1] of the
// crossing. The entry root t1 wins over the exit root t2:
//
//	impale (t1, t2 in range) and poke (t2 > 1) return t1
//	exit wound (t1 < 0, t2 in range) returns t2
//	fall short, past and completely inside are misses
//
// A zero-length direction or a non-positive radius is a miss.
func IntersectCircle(direction, originOffset Vec, radius float64) (float64, bool) {
	a := direction.Dot(direction)
	if a < epsilon || radius <= 0 {
		return 0, false
	}
	b := 2 * originOffset.Dot(direction)
	c := originOffset.Dot(originOffset) - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	disc = math.Sqrt(disc)

	t1 := (-b - disc) / (2 * a)
	t2 := (-b + disc) / (2 * a)

	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	if t2 >= 0 && t2 <= 1 {
		return t2, true
	}
	return 0, false
}
