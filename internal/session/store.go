package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/logging"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id      TEXT PRIMARY KEY,
	source          TEXT NOT NULL,
	thresholds_json TEXT NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	frame_index    INTEGER NOT NULL,
	pose_detected  INTEGER NOT NULL,
	landmarks_json TEXT,
	left_knee_deg  REAL,
	right_knee_deg REAL,
	findings_json  TEXT,
	lines_json     TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	UNIQUE (session_id, frame_index),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store persists coaching sessions and their per-frame evaluations in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region start-session
// StartSession creates a session row with a fresh ID.
func (s *Store) StartSession(source string, thresholds feedback.Thresholds) (Session, error) {
	thJSON, err := json.Marshal(thresholds)
	if err != nil {
		return Session{}, fmt.Errorf("marshal thresholds: %w", err)
	}

	sess := Session{
		SessionID:  uuid.New().String(),
		Source:     source,
		Thresholds: thresholds,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (session_id, source, thresholds_json, created_at) VALUES (?, ?, ?, ?)`,
		sess.SessionID, sess.Source, string(thJSON), sess.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// #endregion start-session

// #region get-session
// GetSession retrieves one session by ID.
func (s *Store) GetSession(id string) (Session, error) {
	var sess Session
	var thJSON, createdStr string
	err := s.db.QueryRow(
		`SELECT session_id, source, thresholds_json, created_at FROM sessions WHERE session_id = ?`, id,
	).Scan(&sess.SessionID, &sess.Source, &thJSON, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(thJSON), &sess.Thresholds); err != nil {
		return Session{}, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return sess, nil
}

// #endregion get-session

// #region list-sessions
// ListSessions returns the most recent sessions, newest first, with frame counts.
func (s *Store) ListSessions(limit int) ([]SessionWithFrames, error) {
	rows, err := s.db.Query(
		`SELECT s.session_id, s.source, s.thresholds_json, s.created_at, COUNT(e.id)
		 FROM sessions s LEFT JOIN evaluation_log e ON e.session_id = s.session_id
		 GROUP BY s.session_id
		 ORDER BY s.created_at DESC, s.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionWithFrames
	for rows.Next() {
		var sw SessionWithFrames
		var thJSON, createdStr string
		if err := rows.Scan(&sw.SessionID, &sw.Source, &thJSON, &createdStr, &sw.Frames); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(thJSON), &sw.Thresholds); err != nil {
			return nil, fmt.Errorf("unmarshal thresholds: %w", err)
		}
		sw.CreatedAt, _ = time.Parse(timeLayout, createdStr)
		out = append(out, sw)
	}
	return out, rows.Err()
}

// #endregion list-sessions

// #region record-frame
// RecordFrame stores one evaluated frame. set is nil for a no-pose frame.
func (s *Store) RecordFrame(sessionID string, index int, set *pose.Set, ev feedback.Evaluation) error {
	entry := logging.EvaluationEntry{
		SessionID:    sessionID,
		FrameIndex:   index,
		PoseDetected: ev.PoseDetected,
		CreatedAt:    time.Now().UTC(),
	}

	if set != nil {
		lm, err := json.Marshal(set)
		if err != nil {
			return fmt.Errorf("marshal landmarks: %w", err)
		}
		entry.LandmarksJSON = string(lm)
	}
	if deg, ok := ev.Angle(feedback.LeftKnee); ok {
		entry.LeftKneeDeg = &deg
	}
	if deg, ok := ev.Angle(feedback.RightKnee); ok {
		entry.RightKneeDeg = &deg
	}
	if len(ev.Findings) > 0 {
		fj, err := json.Marshal(ev.Findings)
		if err != nil {
			return fmt.Errorf("marshal findings: %w", err)
		}
		entry.FindingsJSON = string(fj)
	}
	lj, err := json.Marshal(ev.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}
	entry.LinesJSON = string(lj)

	return logging.LogEvaluation(s.db, entry)
}

// #endregion record-frame

// #region list-frames
// ListFrames returns every recorded frame of a session in frame order.
func (s *Store) ListFrames(sessionID string) ([]FrameRow, error) {
	rows, err := s.db.Query(
		`SELECT frame_index, pose_detected, landmarks_json, left_knee_deg, right_knee_deg,
			findings_json, lines_json, created_at
		 FROM evaluation_log WHERE session_id = ? ORDER BY frame_index ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRow
	for rows.Next() {
		var fr FrameRow
		var landmarks, findings sql.NullString
		var left, right sql.NullFloat64
		var linesJSON, createdStr string

		if err := rows.Scan(&fr.Index, &fr.PoseDetected, &landmarks, &left, &right,
			&findings, &linesJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if landmarks.Valid {
			var set pose.Set
			if err := json.Unmarshal([]byte(landmarks.String), &set); err != nil {
				return nil, fmt.Errorf("frame %d landmarks: %w", fr.Index, err)
			}
			fr.Landmarks = &set
		}
		if left.Valid {
			v := left.Float64
			fr.LeftKneeDeg = &v
		}
		if right.Valid {
			v := right.Float64
			fr.RightKneeDeg = &v
		}
		if findings.Valid {
			if err := json.Unmarshal([]byte(findings.String), &fr.Findings); err != nil {
				return nil, fmt.Errorf("frame %d findings: %w", fr.Index, err)
			}
		}
		if err := json.Unmarshal([]byte(linesJSON), &fr.Lines); err != nil {
			return nil, fmt.Errorf("frame %d lines: %w", fr.Index, err)
		}
		fr.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		frames = append(frames, fr)
	}
	return frames, rows.Err()
}

// CountFrames returns the number of recorded frames for a session.
func (s *Store) CountFrames(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM evaluation_log WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return n, nil
}

// #endregion list-frames
