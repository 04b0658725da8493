package geometry

import "math"

// #region point
// Point is a planar coordinate in the pose estimator's normalized frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// #endregion point

// #region angle
// Angle returns the angle at vertex b swept from a to c, in degrees within [0, 360).
// The result is the difference of the bearings of c-b and a-b. It is meaningless
// when a or c coincides with b.
func Angle(a, b, c Point) float64 {
	ca := c.Sub(b)
	aa := a.Sub(b)
	deg := (math.Atan2(ca.Y, ca.X) - math.Atan2(aa.Y, aa.X)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	// -1e-15 + 360 rounds to 360
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// #endregion angle
