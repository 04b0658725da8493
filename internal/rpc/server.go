package rpc

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/telemetry"
)

// #region server
// Server implements FeedbackServiceServer on top of a feedback.Evaluator.
type Server struct {
	evaluator *feedback.Evaluator
	rec       *telemetry.Recorder
	log       zerolog.Logger
}

// NewServer creates a server. rec may be nil.
func NewServer(evaluator *feedback.Evaluator, rec *telemetry.Recorder, log zerolog.Logger) *Server {
	return &Server{evaluator: evaluator, rec: rec, log: log}
}

// Evaluate decodes one frame, runs the evaluator and returns its lines and findings.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	set, err := decodeLandmarks(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("rejecting frame")
		return nil, status.Errorf(codes.InvalidArgument, "landmarks: %v", err)
	}

	ev, err := s.evaluator.Run(set)
	if err != nil {
		if errors.Is(err, feedback.ErrMissingThreshold) {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	if s.rec != nil {
		s.rec.Record(ctx, ev)
	}
	s.log.Debug().
		Bool("pose_detected", ev.PoseDetected).
		Int("findings", len(ev.Findings)).
		Msg("frame evaluated")

	resp, err := encodeEvaluation(ev, s.evaluator.Thresholds())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// #endregion server
