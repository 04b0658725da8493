// Package report summarises knee angles across a session and charts them.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
)

// #region sample
// Sample is one frame's knee angles. Left and Right are meaningless when
// PoseDetected is false.
type Sample struct {
	Index        int
	PoseDetected bool
	Left         float64
	Right        float64
}

// SamplesFromEvaluations pairs evaluations with their frame indices.
func SamplesFromEvaluations(indices []int, evs []feedback.Evaluation) ([]Sample, error) {
	if len(indices) != len(evs) {
		return nil, fmt.Errorf("samples: %d indices for %d evaluations", len(indices), len(evs))
	}
	out := make([]Sample, len(evs))
	for i, ev := range evs {
		s := Sample{Index: indices[i], PoseDetected: ev.PoseDetected}
		s.Left, _ = ev.Angle(feedback.LeftKnee)
		s.Right, _ = ev.Angle(feedback.RightKnee)
		out[i] = s
	}
	return out, nil
}

// #endregion sample

// #region stats
// AngleStats describes one joint's angle distribution over the detected frames.
type AngleStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Stats computes per-knee statistics. Joints with no detected frames are omitted.
func Stats(samples []Sample) map[feedback.JointID]AngleStats {
	series := map[feedback.JointID][]float64{}
	for _, s := range samples {
		if !s.PoseDetected {
			continue
		}
		series[feedback.LeftKnee] = append(series[feedback.LeftKnee], s.Left)
		series[feedback.RightKnee] = append(series[feedback.RightKnee], s.Right)
	}

	out := make(map[feedback.JointID]AngleStats, len(series))
	for joint, xs := range series {
		st := AngleStats{
			Count: len(xs),
			Mean:  stat.Mean(xs, nil),
			Min:   floats.Min(xs),
			Max:   floats.Max(xs),
		}
		if len(xs) > 1 {
			st.StdDev = stat.StdDev(xs, nil)
		}
		out[joint] = st
	}
	return out
}

// #endregion stats

// #region plot
// WriteKneePlot renders both knee angles against frame index with the threshold
// range drawn as dashed guides. The image format follows the path's extension.
func WriteKneePlot(path string, samples []Sample, thresholds feedback.Thresholds) error {
	p := plot.New()
	p.Title.Text = "Knee angle per frame"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "degrees"
	p.Y.Min = 0
	p.Y.Max = 200
	p.Add(plotter.NewGrid())

	var left, right plotter.XYs
	for _, s := range samples {
		if !s.PoseDetected {
			continue
		}
		left = append(left, plotter.XY{X: float64(s.Index), Y: s.Left})
		right = append(right, plotter.XY{X: float64(s.Index), Y: s.Right})
	}

	if len(left) > 0 {
		ll, err := plotter.NewLine(left)
		if err != nil {
			return fmt.Errorf("left series: %w", err)
		}
		ll.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		rl, err := plotter.NewLine(right)
		if err != nil {
			return fmt.Errorf("right series: %w", err)
		}
		rl.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		p.Add(ll, rl)
		p.Legend.Add("left knee", ll)
		p.Legend.Add("right knee", rl)
	}

	if b, err := thresholds.Lookup(feedback.LeftKnee); err == nil {
		for _, y := range []float64{b.Min, b.Max} {
			level := y
			guide := plotter.NewFunction(func(float64) float64 { return level })
			guide.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
			guide.Color = color.Gray{Y: 120}
			p.Add(guide)
		}
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// #endregion plot
