// Package testutil provides landmark fixtures shared by package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

const limbLength = 0.25

// kneeChain places ankle straight below the knee (bearing 90° in image space) and
// swings the hip so the hip-knee-ankle angle equals deg.
func kneeChain(kneeX, deg float64) (hip, knee, ankle [2]float64) {
	knee = [2]float64{kneeX, 0.6}
	ankle = [2]float64{kneeX, 0.6 + limbLength}
	bearing := (90 - deg) * math.Pi / 180
	hip = [2]float64{kneeX + limbLength*math.Cos(bearing), 0.6 + limbLength*math.Sin(bearing)}
	return hip, knee, ankle
}

// KneeLandmarks returns a complete landmark list whose left and right knee
// angles are leftDeg and rightDeg.
func KneeLandmarks(leftDeg, rightDeg float64) []pose.Landmark {
	lh, lk, la := kneeChain(0.6, leftDeg)
	rh, rk, ra := kneeChain(0.4, rightDeg)
	mk := func(id pose.LandmarkID, p [2]float64) pose.Landmark {
		return pose.Landmark{ID: id, X: p[0], Y: p[1], Visibility: 0.9}
	}
	return []pose.Landmark{
		mk(pose.LeftHip, lh), mk(pose.LeftKnee, lk), mk(pose.LeftAnkle, la),
		mk(pose.RightHip, rh), mk(pose.RightKnee, rk), mk(pose.RightAnkle, ra),
	}
}

// KneeSet builds a validated Set with the given knee angles.
func KneeSet(t testing.TB, leftDeg, rightDeg float64) *pose.Set {
	t.Helper()
	s, err := pose.NewSet(KneeLandmarks(leftDeg, rightDeg))
	if err != nil {
		t.Fatalf("build landmark set: %v", err)
	}
	return s
}
