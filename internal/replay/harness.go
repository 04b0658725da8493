package replay

import (
	"fmt"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// #region types
// Frame is one recorded estimator output. Landmarks is nil when no pose was detected.
type Frame struct {
	Index     int
	Landmarks *pose.Set
}

// FrameResult is the outcome of replaying one frame through the pipeline.
type FrameResult struct {
	Index      int
	Evaluation feedback.Evaluation
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalFrames int
	NoPose      int
	GoodFrames  int // pose present, no findings
	RiskFrames  int // pose present, at least one finding
	Underbends  int
	Overbends   int
}

// #endregion types

// #region replay
// Replay evaluates frames in order. Frames are independent; the evaluator carries
// nothing from one to the next.
func Replay(frames []Frame, evaluator *feedback.Evaluator) ([]FrameResult, error) {
	results := make([]FrameResult, 0, len(frames))
	for _, fr := range frames {
		ev, err := evaluator.Run(fr.Landmarks)
		if err != nil {
			return results, fmt.Errorf("frame %d: %w", fr.Index, err)
		}
		results = append(results, FrameResult{Index: fr.Index, Evaluation: ev})
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []FrameResult) Summary {
	s := Summary{TotalFrames: len(results)}
	for _, r := range results {
		ev := r.Evaluation
		switch {
		case !ev.PoseDetected:
			s.NoPose++
		case len(ev.Findings) == 0:
			s.GoodFrames++
		default:
			s.RiskFrames++
		}
		for _, f := range ev.Findings {
			switch f.Kind {
			case feedback.Underbend:
				s.Underbends++
			case feedback.Overbend:
				s.Overbends++
			}
		}
	}
	return s
}

// Evaluations extracts the evaluations from results, keeping order.
func Evaluations(results []FrameResult) []feedback.Evaluation {
	out := make([]feedback.Evaluation, len(results))
	for i, r := range results {
		out[i] = r.Evaluation
	}
	return out
}

// #endregion replay
