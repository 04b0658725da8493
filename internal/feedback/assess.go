package feedback

import (
	"github.com/danielpatrickdp/squat-coach/internal/geometry"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// #region messages
const (
	MsgTooShallow = "Warning: Your squat depth is too shallow! Bend your knees more."
	MsgTooLow     = "Warning: Your squat depth is too low! Avoid over-bending."
	MsgGoodForm   = "Good form! Keep it up."
)

// Qualitative bounds. These are fixed coaching cues and do not follow Thresholds.
const (
	assessLowerDeg = 70.0
	assessUpperDeg = 120.0
)

// #endregion messages

// #region assess
// AssessKneeAngle turns a knee angle into a coaching line.
func AssessKneeAngle(deg float64) string {
	switch {
	case deg > assessUpperDeg:
		return MsgTooShallow
	case deg < assessLowerDeg:
		return MsgTooLow
	default:
		return MsgGoodForm
	}
}

// Assess measures the knee on side and returns its coaching line.
func Assess(set *pose.Set, side pose.Side) string {
	return AssessKneeAngle(kneeAngle(set, side))
}

// #endregion assess

// #region measure
// kneeAngle is the hip-knee-ankle angle for one side.
func kneeAngle(set *pose.Set, side pose.Side) float64 {
	hip, knee, ankle := pose.LegChain(side)
	return geometry.Angle(set.Point(hip), set.Point(knee), set.Point(ankle))
}

// Measure computes every tracked joint angle once, in TrackedJoints order.
func Measure(set *pose.Set) []JointAngle {
	angles := make([]JointAngle, 0, len(TrackedJoints))
	for _, j := range TrackedJoints {
		angles = append(angles, JointAngle{Joint: j, Degrees: kneeAngle(set, j.Side())})
	}
	return angles
}

// #endregion measure
