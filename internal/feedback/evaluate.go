package feedback

import (
	"fmt"

	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// MsgNoPose is the single line shown when the estimator found nobody in frame.
const MsgNoPose = "No pose detected. Ensure your full body is visible in the frame."

// #region evaluator
// Evaluator runs the per-frame pipeline against a fixed set of thresholds.
// It holds no per-frame state and is safe for concurrent use.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator. Thresholds are not validated until a frame
// with a pose needs them.
func NewEvaluator(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Thresholds returns the evaluator's configured bounds.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Run evaluates one frame. A nil set produces the no-pose fallback.
// Otherwise Lines is always [left joint, right joint, risk summary].
func (e *Evaluator) Run(set *pose.Set) (Evaluation, error) {
	if set == nil {
		return Evaluation{Lines: []string{MsgNoPose}}, nil
	}

	angles := Measure(set)
	findings, err := classifyAngles(angles, e.thresholds)
	if err != nil {
		return Evaluation{}, fmt.Errorf("classify risk: %w", err)
	}

	lines := make([]string, 0, len(angles)+1)
	for _, a := range angles {
		lines = append(lines, AssessKneeAngle(a.Degrees))
	}
	lines = append(lines, Aggregate(findings))

	return Evaluation{
		PoseDetected: true,
		Angles:       angles,
		Findings:     findings,
		Lines:        lines,
	}, nil
}

// #endregion evaluator

// #region evaluate
// Evaluate returns the ordered display lines for one frame.
func Evaluate(set *pose.Set, thresholds Thresholds) ([]string, error) {
	ev, err := NewEvaluator(thresholds).Run(set)
	if err != nil {
		return nil, err
	}
	return ev.Lines, nil
}

// #endregion evaluate
