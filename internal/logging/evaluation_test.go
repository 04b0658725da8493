package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE evaluation_log (
		session_id     TEXT NOT NULL,
		frame_index    INTEGER NOT NULL,
		pose_detected  INTEGER NOT NULL,
		landmarks_json TEXT,
		left_knee_deg  REAL,
		right_knee_deg REAL,
		findings_json  TEXT,
		lines_json     TEXT NOT NULL,
		created_at     TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func ptr(f float64) *float64 { return &f }

// #endregion helpers

// #region log-evaluation-tests
func TestLogEvaluation_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := EvaluationEntry{
		SessionID:     "s1",
		FrameIndex:    3,
		PoseDetected:  true,
		LandmarksJSON: `{"left_knee":{"x":0.5,"y":0.5}}`,
		LeftKneeDeg:   ptr(95),
		RightKneeDeg:  ptr(130),
		FindingsJSON:  `[{"joint":"right_knee","kind":"overbend"}]`,
		LinesJSON:     `["a","b","c"]`,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogEvaluation(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM evaluation_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var sessionID string
	var frame int
	var right float64
	db.QueryRow("SELECT session_id, frame_index, right_knee_deg FROM evaluation_log").Scan(&sessionID, &frame, &right)
	if sessionID != "s1" || frame != 3 {
		t.Errorf("got session=%q frame=%d", sessionID, frame)
	}
	if right != 130 {
		t.Errorf("expected right_knee_deg 130, got %f", right)
	}
}

func TestLogEvaluation_NoPoseNulls(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := EvaluationEntry{
		SessionID:  "s1",
		FrameIndex: 0,
		LinesJSON:  `["No pose detected."]`,
	}
	before := time.Now().UTC()
	if err := LogEvaluation(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var landmarks, findings sql.NullString
	var left, right sql.NullFloat64
	var createdAtStr string
	db.QueryRow("SELECT landmarks_json, findings_json, left_knee_deg, right_knee_deg, created_at FROM evaluation_log").Scan(
		&landmarks, &findings, &left, &right, &createdAtStr,
	)
	if landmarks.Valid || findings.Valid {
		t.Error("expected NULL json columns for no-pose frame")
	}
	if left.Valid || right.Valid {
		t.Error("expected NULL angles for no-pose frame")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogEvaluation_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogEvaluation(db, EvaluationEntry{SessionID: "s1", LinesJSON: "[]"})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-evaluation-tests

// #region null-helper-tests
func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Error("expected nil for empty string")
	}
	if nullIfEmpty("hello") != "hello" {
		t.Error("expected passthrough for non-empty string")
	}
}

func TestNullIfNil(t *testing.T) {
	if nullIfNil(nil) != nil {
		t.Error("expected nil for nil pointer")
	}
	if nullIfNil(ptr(1.5)) != 1.5 {
		t.Error("expected dereferenced value")
	}
}

// #endregion null-helper-tests
