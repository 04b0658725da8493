package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
)

const instrumentationName = "github.com/danielpatrickdp/squat-coach"

// Recorder counts evaluated frames and risk findings.
type Recorder struct {
	frames   metric.Int64Counter
	findings metric.Int64Counter
}

// NewRecorder creates the counters on meter. A nil meter uses the global provider,
// which is a no-op until one is installed.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	frames, err := meter.Int64Counter("squat.frames.evaluated",
		metric.WithDescription("Frames run through the feedback pipeline"),
		metric.WithUnit("{frame}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create frames counter: %w", err)
	}

	findings, err := meter.Int64Counter("squat.risk.findings",
		metric.WithDescription("Joints found outside their configured thresholds"),
		metric.WithUnit("{finding}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create findings counter: %w", err)
	}

	return &Recorder{frames: frames, findings: findings}, nil
}

// Record adds one frame and its findings to the counters.
func (r *Recorder) Record(ctx context.Context, ev feedback.Evaluation) {
	r.frames.Add(ctx, 1, metric.WithAttributes(attribute.Bool("pose_detected", ev.PoseDetected)))
	for _, f := range ev.Findings {
		r.findings.Add(ctx, 1, metric.WithAttributes(
			attribute.String("joint", string(f.Joint)),
			attribute.String("kind", string(f.Kind)),
		))
	}
}
