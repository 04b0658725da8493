package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-evaluation
// LogEvaluation writes one frame's result to the evaluation_log table.
func LogEvaluation(db *sql.DB, entry EvaluationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO evaluation_log (session_id, frame_index, pose_detected, landmarks_json,
			left_knee_deg, right_knee_deg, findings_json, lines_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.FrameIndex,
		entry.PoseDetected,
		nullIfEmpty(entry.LandmarksJSON),
		nullIfNil(entry.LeftKneeDeg),
		nullIfNil(entry.RightKneeDeg),
		nullIfEmpty(entry.FindingsJSON),
		entry.LinesJSON,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log evaluation: %w", err)
	}
	return nil
}

// #endregion log-evaluation

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfNil(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// #endregion helpers
