// Package arena supplies the per-pixel geometry of a panel display arena:
// unit vectors on the projection surface, the angular radius of a pixel, and
// the rotation and spherical-coordinate primitives stimulus synthesis uses.
//
// Geometry values are built once per arena configuration and never mutated;
// every synthesis call shares them read-only.
package arena

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrBadLayout   = errors.New("arena: invalid panel layout")
	ErrBadCoverage = errors.New("arena: coverage must be in (0, 2π]")
	ErrCoordCount  = errors.New("arena: coordinate count does not match layout")
	ErrSampleCount = errors.New("arena: sample count must be >= 1")
	ErrPixelRadius = errors.New("arena: pixel radius must be finite and >= 0")
)

// Geometry is the read-only view of an arena consumed by stimulus synthesis.
// Coordinates are unit vectors in row-major order matching Layout.Index.
type Geometry interface {
	Layout() Layout
	Coordinates() []r3.Vec
	PixelRadius() float64
}

// Arena is an immutable Geometry built from precomputed coordinates.
type Arena struct {
	layout Layout
	coords []r3.Vec
	pRad   float64
}

// New wraps externally computed coordinates. The slice is copied so later
// changes by the caller cannot leak into synthesis.
func New(l Layout, coords []r3.Vec, pRad float64) (*Arena, error) {
	if !l.Valid() {
		return nil, ErrBadLayout
	}
	if len(coords) != l.Count() {
		return nil, ErrCoordCount
	}
	if pRad < 0 || math.IsNaN(pRad) || math.IsInf(pRad, 0) {
		return nil, ErrPixelRadius
	}
	cc := make([]r3.Vec, len(coords))
	for i, v := range coords {
		cc[i] = r3.Unit(v)
	}
	return &Arena{layout: l, coords: cc, pRad: pRad}, nil
}

func (a *Arena) Layout() Layout { return a.layout }

// Coordinates returns the shared coordinate slice. Callers must not modify it.
func (a *Arena) Coordinates() []r3.Vec { return a.coords }

func (a *Arena) PixelRadius() float64 { return a.pRad }

// Euler is a rigid rotation given as z-y-z Euler angles in radians:
// rotate about z by Yaw, then about y by Pitch, then about z by Roll.
type Euler struct {
	Yaw, Pitch, Roll float64
}

var (
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

// Rotate returns a new slice holding every coordinate rotated by e.
func Rotate(coords []r3.Vec, e Euler) []r3.Vec {
	out := make([]r3.Vec, len(coords))
	RotateInto(out, coords, e)
	return out
}

// RotateInto writes rotated coordinates into dst, which must be at least as
// long as src.
func RotateInto(dst, src []r3.Vec, e Euler) {
	yaw := r3.NewRotation(e.Yaw, axisZ)
	pitch := r3.NewRotation(e.Pitch, axisY)
	roll := r3.NewRotation(e.Roll, axisZ)
	for i, v := range src {
		dst[i] = roll.Rotate(pitch.Rotate(yaw.Rotate(v)))
	}
}

// Direction is a point on the unit sphere in arena terms: azimuth around the
// vertical axis and elevation above the horizon, both in radians.
type Direction struct {
	Azimuth, Elevation float64
}

// Vec converts d to a unit vector.
func (d Direction) Vec() r3.Vec {
	ce := math.Cos(d.Elevation)
	return r3.Vec{
		X: ce * math.Cos(d.Azimuth),
		Y: ce * math.Sin(d.Azimuth),
		Z: math.Sin(d.Elevation),
	}
}

// PoleRotation returns the rotation that carries pole onto +z and then turns
// the frame about that pole by -motionAngle, so azimuth zero in the rotated
// frame points along the motion direction.
func PoleRotation(pole Direction, motionAngle float64) Euler {
	return Euler{
		Yaw:   -pole.Azimuth,
		Pitch: pole.Elevation - math.Pi/2,
		Roll:  -motionAngle,
	}
}

// Spherical is the (azimuth, colatitude) pair of a unit vector. Azimuth is in
// (-π, π], colatitude in [0, π] measured from +z.
type Spherical struct {
	Azimuth    float64
	Colatitude float64
}

// ToSpherical converts a Cartesian vector to spherical form.
func ToSpherical(v r3.Vec) Spherical {
	n := r3.Norm(v)
	if n == 0 {
		return Spherical{}
	}
	z := v.Z / n
	if z > 1 {
		z = 1
	} else if z < -1 {
		z = -1
	}
	return Spherical{
		Azimuth:    math.Atan2(v.Y, v.X),
		Colatitude: math.Acos(z),
	}
}

// AngleBetween returns the angular distance between two unit vectors.
func AngleBetween(a, b r3.Vec) float64 {
	d := r3.Dot(a, b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}
