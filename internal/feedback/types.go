package feedback

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// #region errors
// ErrMissingThreshold is returned when a tracked joint has no configured bounds.
var ErrMissingThreshold = errors.New("missing threshold")

// #endregion errors

// #region joint
// JointID names a joint the risk classifier tracks.
type JointID string

const (
	LeftKnee  JointID = "left_knee"
	RightKnee JointID = "right_knee"
)

// TrackedJoints is the fixed evaluation order. Findings and angles always follow it.
var TrackedJoints = []JointID{LeftKnee, RightKnee}

// Side returns the body side the joint is on.
func (j JointID) Side() pose.Side {
	if j == RightKnee {
		return pose.SideRight
	}
	return pose.SideLeft
}

// label is the capitalised side prefix used in finding messages.
func (j JointID) label() string {
	if j.Side() == pose.SideRight {
		return "Right"
	}
	return "Left"
}

// kneeJoint maps a side to its knee joint.
func kneeJoint(side pose.Side) JointID {
	if side == pose.SideRight {
		return RightKnee
	}
	return LeftKnee
}

// #endregion joint

// #region thresholds
// Bounds are inclusive degree limits for one joint.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Thresholds maps each tracked joint to its safe range. Supplied by the caller.
type Thresholds map[JointID]Bounds

// Lookup returns the bounds for joint or an error wrapping ErrMissingThreshold.
func (t Thresholds) Lookup(joint JointID) (Bounds, error) {
	b, ok := t[joint]
	if !ok {
		return Bounds{}, fmt.Errorf("%w for %s", ErrMissingThreshold, joint)
	}
	return b, nil
}

// KneeThresholds returns thresholds with one range shared by both knees.
func KneeThresholds(min, max float64) Thresholds {
	return Thresholds{
		LeftKnee:  {Min: min, Max: max},
		RightKnee: {Min: min, Max: max},
	}
}

// Flat threshold keys, as written in configuration files.
const (
	KeyKneeMin = "knee_min"
	KeyKneeMax = "knee_max"
)

// ThresholdsFromFlat builds Thresholds from the flat knee_min/knee_max form.
// Both keys are required; there are no defaults.
func ThresholdsFromFlat(flat map[string]float64) (Thresholds, error) {
	min, ok := flat[KeyKneeMin]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingThreshold, KeyKneeMin)
	}
	max, ok := flat[KeyKneeMax]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingThreshold, KeyKneeMax)
	}
	if min > max {
		return nil, fmt.Errorf("invalid knee thresholds: min %.1f > max %.1f", min, max)
	}
	return KneeThresholds(min, max), nil
}

// Flat is the inverse of ThresholdsFromFlat. When the knees carry different
// ranges the left knee's range is reported. Missing knee bounds are omitted.
func (t Thresholds) Flat() map[string]float64 {
	flat := make(map[string]float64, 2)
	for _, joint := range []JointID{LeftKnee, RightKnee} {
		if b, ok := t[joint]; ok {
			flat[KeyKneeMin] = b.Min
			flat[KeyKneeMax] = b.Max
			break
		}
	}
	return flat
}

// #endregion thresholds

// #region findings
// RiskKind tags which side of the safe range an angle fell on.
type RiskKind string

const (
	// Underbend: angle below the configured minimum.
	Underbend RiskKind = "underbend"
	// Overbend: angle above the configured maximum.
	Overbend RiskKind = "overbend"
)

// RiskFinding is one joint outside its thresholds.
type RiskFinding struct {
	Joint   JointID  `json:"joint"`
	Kind    RiskKind `json:"kind"`
	Message string   `json:"message"`
}

// JointAngle is a measured angle for one tracked joint.
type JointAngle struct {
	Joint   JointID `json:"joint"`
	Degrees float64 `json:"degrees"`
}

// #endregion findings

// #region evaluation
// Evaluation is the full result for one frame. Lines is what gets displayed.
type Evaluation struct {
	PoseDetected bool          `json:"pose_detected"`
	Angles       []JointAngle  `json:"angles,omitempty"`
	Findings     []RiskFinding `json:"findings,omitempty"`
	Lines        []string      `json:"lines"`
}

// Angle returns the measured angle for joint, if the frame had a pose.
func (e Evaluation) Angle(joint JointID) (float64, bool) {
	for _, a := range e.Angles {
		if a.Joint == joint {
			return a.Degrees, true
		}
	}
	return 0, false
}

// #endregion evaluation
