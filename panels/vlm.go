package panels

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wdf-nudtaa/flow5-sub004/geometry3D"
)

// HorseshoeVelocity returns the velocity at C induced by a horseshoe vortex
// of unit circulation, bound segment A->B and trailing legs extending
// farDist downstream along x. The bound segment is skipped when bound is
// false, for points in the far field.
func HorseshoeVelocity(A, B, C r3.Vec, bound bool, farDist, coreRadius float64) (V r3.Vec) {
	if bound {
		V = geometry3D.SegmentVelocity(A, B, C, coreRadius)
	}
	farA, farB := FarPoints(A, B, farDist)
	V = r3.Add(V, geometry3D.SegmentVelocity(farA, A, C, coreRadius))
	V = r3.Add(V, geometry3D.SegmentVelocity(B, farB, C, coreRadius))
	return
}

// RingVelocity returns the velocity at C induced by a quadrilateral vortex
// ring of unit circulation running LB->TB->TA->LA->LB.
func RingVelocity(LA, LB, TA, TB, C r3.Vec, coreRadius float64) (V r3.Vec) {
	ring := [5]r3.Vec{LB, TB, TA, LA, LB}
	for i := 0; i < 4; i++ {
		V = r3.Add(V, geometry3D.SegmentVelocity(ring[i], ring[i+1], C, coreRadius))
	}
	return
}

// RingPotential uses the equivalence of a vortex ring with a uniform doublet
// density on the quad it encloses.
func RingPotential(LA, LB, TA, TB, C r3.Vec, coreRadius float64) (phi float64) {
	ring := NewPanel4(LA, LB, TA, TB)
	return ring.DoubletPotential(C, false, coreRadius, true)
}

// FarPoints returns A and B translated farDist downstream
func FarPoints(A, B r3.Vec, farDist float64) (farA, farB r3.Vec) {
	farA = r3.Vec{X: A.X + farDist, Y: A.Y, Z: A.Z}
	farB = r3.Vec{X: B.X + farDist, Y: B.Y, Z: B.Z}
	return
}
