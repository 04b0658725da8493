package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/squat-coach/internal/session"
)

// #region export

// ExportSession builds a fixture from a recorded session. The recorded lines become
// the expected results, so replaying the fixture checks the pipeline against what
// the coach showed at the time. last > 0 keeps only the most recent frames.
func ExportSession(store *session.Store, sessionID string, last int) (*Fixture, error) {
	sess, err := store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := store.ListFrames(sessionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("session %s has no frames", sessionID)
	}
	if last > 0 && len(rows) > last {
		rows = rows[len(rows)-last:]
	}

	f := &Fixture{
		Description: fmt.Sprintf("Exported from session %s (%s), %d frames", sess.SessionID, sess.Source, len(rows)),
		Thresholds:  sess.Thresholds.Flat(),
		Frames:      make([]FixtureFrame, len(rows)),
		Expected:    make([]FixtureExpectedResult, len(rows)),
	}
	for i, r := range rows {
		f.Frames[i] = FixtureFrame{Index: r.Index, Landmarks: r.Landmarks}
		f.Expected[i] = FixtureExpectedResult{Index: r.Index, Lines: r.Lines}
	}
	return f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion export
