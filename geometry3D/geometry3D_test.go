package geometry3D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestWindAxes(t *testing.T) {
	for _, ab := range [][2]float64{{0, 0}, {5, 0}, {-8, 3}, {12, -6}} {
		var (
			d = WindDirection(ab[0], ab[1])
			s = WindSide(ab[0], ab[1])
			n = WindNormal(ab[0], ab[1])
		)
		assert.InDelta(t, 1., r3.Norm(d), 1.e-15)
		assert.InDelta(t, 1., r3.Norm(s), 1.e-15)
		assert.InDelta(t, 0., r3.Dot(d, s), 1.e-15)
		if ab[1] == 0 {
			assert.InDelta(t, 0., r3.Dot(d, n), 1.e-15)
		}
	}
	assert.InDelta(t, 30., Degrees(Radians(30)), 1.e-13)
}

func TestSegmentVelocity(t *testing.T) {
	var (
		A = r3.Vec{Y: -1.e4}
		B = r3.Vec{Y: 1.e4}
	)
	{ // Long filament, Biot-Savart for an infinite line
		V := SegmentVelocity(A, B, r3.Vec{X: 2}, 0)
		assert.InDelta(t, 0., V.X, 1.e-15)
		assert.InDelta(t, 0., V.Y, 1.e-15)
		assert.InDelta(t, -1./(2.*math.Pi*2.), V.Z, 1.e-8)
	}
	{ // Finite segment seen from its perpendicular bisector
		var (
			C = r3.Vec{X: 1}
			V = SegmentVelocity(r3.Vec{Y: -1}, r3.Vec{Y: 1}, C, 0)
		)
		assert.InDelta(t, -2./math.Sqrt2/(4.*math.Pi), V.Z, 1.e-15)
	}
	{ // Points on the axis and degenerate segments
		assert.Equal(t, r3.Vec{}, SegmentVelocity(A, B, r3.Vec{Y: 3}, 0))
		assert.Equal(t, r3.Vec{}, SegmentVelocity(A, A, r3.Vec{X: 1}, 0))
	}
	{ // The core smooths the velocity close to the filament
		var (
			C  = r3.Vec{X: 0.01}
			V0 = SegmentVelocity(A, B, C, 0)
			V1 = SegmentVelocity(A, B, C, 0.01)
		)
		assert.InDelta(t, 0.5*V0.Z, V1.Z, 1.e-12)
	}
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: -1}, Mirror(r3.Vec{X: 1, Y: 2, Z: -1}, 1))
}
