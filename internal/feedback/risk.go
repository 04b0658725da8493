package feedback

import "github.com/danielpatrickdp/squat-coach/internal/pose"

// #region classify
// ClassifyAngle checks one joint angle against its bounds. Angles on a bound are safe.
func ClassifyAngle(joint JointID, deg float64, b Bounds) (RiskFinding, bool) {
	switch {
	case deg < b.Min:
		return RiskFinding{
			Joint:   joint,
			Kind:    Underbend,
			Message: joint.label() + " knee over-bending detected.",
		}, true
	case deg > b.Max:
		return RiskFinding{
			Joint:   joint,
			Kind:    Overbend,
			Message: joint.label() + " knee insufficient bending detected.",
		}, true
	default:
		return RiskFinding{}, false
	}
}

// Classify measures every tracked joint and returns findings in TrackedJoints order.
// An empty result means no risk.
func Classify(set *pose.Set, thresholds Thresholds) ([]RiskFinding, error) {
	return classifyAngles(Measure(set), thresholds)
}

func classifyAngles(angles []JointAngle, thresholds Thresholds) ([]RiskFinding, error) {
	var findings []RiskFinding
	for _, a := range angles {
		b, err := thresholds.Lookup(a.Joint)
		if err != nil {
			return nil, err
		}
		if f, ok := ClassifyAngle(a.Joint, a.Degrees, b); ok {
			findings = append(findings, f)
		}
	}
	return findings, nil
}

// #endregion classify
