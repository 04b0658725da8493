package replay

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
	"github.com/danielpatrickdp/squat-coach/internal/session"
	"github.com/danielpatrickdp/squat-coach/internal/testutil"
)

// #region export-tests

func recordSession(t *testing.T, store *session.Store, sets []*pose.Set) string {
	t.Helper()
	th := feedback.KneeThresholds(70, 120)
	sess, err := store.StartSession("export-test", th)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	ev := feedback.NewEvaluator(th)
	for i, set := range sets {
		res, err := ev.Run(set)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if err := store.RecordFrame(sess.SessionID, i, set, res); err != nil {
			t.Fatalf("RecordFrame: %v", err)
		}
	}
	return sess.SessionID
}

// TestExportSession_RoundTrip exports a recorded session, writes it to disk,
// loads it back and replays it against the recorded lines.
func TestExportSession_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := session.NewStore(filepath.Join(dir, "export.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	id := recordSession(t, store, []*pose.Set{
		nil,
		testutil.KneeSet(t, 150, 150),
		testutil.KneeSet(t, 60, 130),
	})

	f, err := ExportSession(store, id, 0)
	if err != nil {
		t.Fatalf("ExportSession: %v", err)
	}
	if len(f.Frames) != 3 || len(f.Expected) != 3 {
		t.Fatalf("expected 3 frames and results, got %d/%d", len(f.Frames), len(f.Expected))
	}

	path := filepath.Join(dir, "fixture.json")
	if err := WriteFixture(path, f); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	th, err := loaded.KneeThresholds()
	if err != nil {
		t.Fatalf("KneeThresholds: %v", err)
	}
	frames, err := loaded.ToFrames()
	if err != nil {
		t.Fatalf("ToFrames: %v", err)
	}
	if frames[0].Landmarks != nil {
		t.Error("frame 0 should carry no landmarks")
	}

	results, err := Replay(frames, feedback.NewEvaluator(th))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	for i, exp := range loaded.Expected {
		if diff := cmp.Diff(exp.Lines, results[i].Evaluation.Lines); diff != "" {
			t.Errorf("frame %d lines (-want +got):\n%s", exp.Index, diff)
		}
	}
}

func TestExportSession_Last(t *testing.T) {
	store, err := session.NewStore(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	id := recordSession(t, store, []*pose.Set{nil, nil, testutil.KneeSet(t, 90, 90)})

	f, err := ExportSession(store, id, 2)
	if err != nil {
		t.Fatalf("ExportSession: %v", err)
	}
	if len(f.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(f.Frames))
	}
	if f.Frames[0].Index != 1 || f.Frames[1].Index != 2 {
		t.Errorf("kept indices %d,%d, want 1,2", f.Frames[0].Index, f.Frames[1].Index)
	}
}

func TestExportSession_Errors(t *testing.T) {
	store, err := session.NewStore(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if _, err := ExportSession(store, "missing", 0); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	id := recordSession(t, store, nil)
	if _, err := ExportSession(store, id, 0); err == nil {
		t.Error("expected error for empty session")
	}
}

// #endregion export-tests
