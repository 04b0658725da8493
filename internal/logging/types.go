package logging

import "time"

// #region evaluation-entry
// EvaluationEntry is a single row in the evaluation_log table: one evaluated frame.
type EvaluationEntry struct {
	SessionID     string
	FrameIndex    int
	PoseDetected  bool
	LandmarksJSON string   // named-landmark object, empty when no pose
	LeftKneeDeg   *float64 // nil when no pose
	RightKneeDeg  *float64
	FindingsJSON  string
	LinesJSON     string
	CreatedAt     time.Time
}

// #endregion evaluation-entry
