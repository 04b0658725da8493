package session

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// ErrSessionNotFound is returned when a session ID has no row.
var ErrSessionNotFound = errors.New("session not found")

// #region session
// Session is one recorded run of the coach over a landmark stream.
type Session struct {
	SessionID  string
	Source     string // input path, "stdin", "grpc", ...
	Thresholds feedback.Thresholds
	CreatedAt  time.Time
}

// SessionWithFrames pairs a session with its recorded frame count.
type SessionWithFrames struct {
	Session
	Frames int
}

// #endregion session

// #region frame-row
// FrameRow is one decoded evaluation_log row.
type FrameRow struct {
	Index        int
	PoseDetected bool
	Landmarks    *pose.Set // nil when no pose
	LeftKneeDeg  *float64
	RightKneeDeg *float64
	Findings     []feedback.RiskFinding
	Lines        []string
	CreatedAt    time.Time
}

// #endregion frame-row
