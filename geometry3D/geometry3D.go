package geometry3D

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	LENGTHPRECISION = 1.e-6
	// Default vortex core radius, in metres
	CoreRadius = 1.e-6
)

var (
	X = r3.Vec{X: 1}
	Y = r3.Vec{Y: 1}
	Z = r3.Vec{Z: 1}
)

func Radians(deg float64) float64 { return deg * math.Pi / 180. }
func Degrees(rad float64) float64 { return rad * 180. / math.Pi }

// WindDirection is the unit freestream vector for an angle of attack and a
// sideslip angle in degrees. Positive sideslip blows from the right.
func WindDirection(alpha, beta float64) (V r3.Vec) {
	var (
		ca, sa = math.Cos(Radians(alpha)), math.Sin(Radians(alpha))
		cb, sb = math.Cos(-Radians(beta)), math.Sin(-Radians(beta))
	)
	V = r3.Vec{X: ca * cb, Y: sb, Z: sa * cb}
	return
}

// WindSide is the side force direction, to the right of the wind
func WindSide(alpha, beta float64) (V r3.Vec) {
	var (
		ca, sa = math.Cos(Radians(alpha)), math.Sin(Radians(alpha))
		cb, sb = math.Cos(-Radians(beta)), math.Sin(-Radians(beta))
	)
	V = r3.Vec{X: -ca * sb, Y: cb, Z: -sa * sb}
	return
}

// WindNormal is the lift direction, independent of sideslip
func WindNormal(alpha, _ float64) (V r3.Vec) {
	V = r3.Vec{X: -math.Sin(Radians(alpha)), Z: math.Cos(Radians(alpha))}
	return
}

func IsSame(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func Mid(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// Mirror reflects C through the plane z = -height
func Mirror(C r3.Vec, height float64) r3.Vec {
	return r3.Vec{X: C.X, Y: C.Y, Z: -C.Z - 2.*height}
}

// SegmentVelocity returns the velocity induced at C by a straight vortex
// filament of unit circulation running from A to B. The induced velocity is
// smoothed within coreRadius of the filament axis and vanishes on the axis.
func SegmentVelocity(A, B, C r3.Vec, coreRadius float64) (V r3.Vec) {
	var (
		r0 = r3.Sub(B, A)
		r1 = r3.Sub(C, A)
		r2 = r3.Sub(C, B)
		h  = r3.Cross(r1, r2)
	)
	var (
		L0 = r3.Norm(r0)
		R1 = r3.Norm(r1)
		R2 = r3.Norm(r2)
		h2 = r3.Norm2(h)
	)
	if L0 < LENGTHPRECISION || R1 < LENGTHPRECISION || R2 < LENGTHPRECISION {
		return
	}
	// squared distance to the filament axis
	d2 := h2 / (L0 * L0)
	if d2 < LENGTHPRECISION*LENGTHPRECISION*LENGTHPRECISION {
		return
	}
	var (
		ftmp = (r3.Dot(r0, r1)/R1 - r3.Dot(r0, r2)/R2) / (4. * math.Pi * h2)
	)
	if coreRadius > 0 {
		// Scully vortex
		ftmp *= d2 / (d2 + coreRadius*coreRadius)
	}
	V = r3.Scale(ftmp, h)
	return
}
