package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/squat-coach/internal/config"
	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/report"
	"github.com/danielpatrickdp/squat-coach/internal/session"
)

// #region main

func main() {
	configDir := flag.String("config", ".", "directory holding squat_coach.cfg.json")
	dbPath := flag.String("db", "", "path to squat_coach.db (overrides db.path)")
	last := flag.Int("last", 20, "show N most recent sessions")
	sessionID := flag.String("session", "", "show single session detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if _, err := os.Stat(cfg.DB.Path); err != nil {
		fmt.Fprintln(os.Stderr, "usage: inspect [--db path/to/squat_coach.db] [--last N] [--session id] [--json]")
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg.DB.Path, *sessionID, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, sessionID string, last int, jsonOut bool) error {
	store, err := session.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	if sessionID != "" {
		return runDetailMode(store, sessionID, jsonOut)
	}
	return runListMode(store, last, jsonOut)
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID string             `json:"session_id"`
	Source    string             `json:"source"`
	Frames    int                `json:"frames"`
	KneeRange map[string]float64 `json:"thresholds"`
	CreatedAt string             `json:"created_at"`
}

func runListMode(store *session.Store, last int, jsonOut bool) error {
	sessions, err := store.ListSessions(last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, len(sessions))
	for i, s := range sessions {
		rows[i] = listRow{
			SessionID: s.SessionID,
			Source:    s.Source,
			Frames:    s.Frames,
			KneeRange: s.Thresholds.Flat(),
			CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %6s  %-11s  %-20s  %s\n", "Session", "Frames", "Knee Range", "Time", "Source")
	fmt.Printf("%-10s+-%6s+-%-11s+-%-20s+-%s\n",
		"----------", "------", "-----------", "--------------------", "--------")
	for _, r := range rows {
		fmt.Printf("%-10s  %6d  %-11s  %-20s  %s\n",
			shortID(r.SessionID), r.Frames, kneeRange(r.KneeRange), r.CreatedAt, r.Source)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	SessionID  string                                 `json:"session_id"`
	Source     string                                 `json:"source"`
	CreatedAt  string                                 `json:"created_at"`
	Thresholds map[string]float64                     `json:"thresholds"`
	Stats      map[feedback.JointID]report.AngleStats `json:"stats"`
	Frames     []frameOutput                          `json:"frames"`
}

type frameOutput struct {
	Index        int                    `json:"index"`
	PoseDetected bool                   `json:"pose_detected"`
	LeftKneeDeg  *float64               `json:"left_knee_deg,omitempty"`
	RightKneeDeg *float64               `json:"right_knee_deg,omitempty"`
	Findings     []feedback.RiskFinding `json:"findings,omitempty"`
	Lines        []string               `json:"lines"`
}

func runDetailMode(store *session.Store, sessionID string, jsonOut bool) error {
	sess, err := store.GetSession(sessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return fmt.Errorf("session %s not found", sessionID)
	}
	if err != nil {
		return err
	}
	frames, err := store.ListFrames(sessionID)
	if err != nil {
		return err
	}

	out := detailOutput{
		SessionID:  sess.SessionID,
		Source:     sess.Source,
		CreatedAt:  sess.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Thresholds: sess.Thresholds.Flat(),
		Stats:      report.Stats(samplesFromRows(frames)),
		Frames:     make([]frameOutput, len(frames)),
	}
	for i, fr := range frames {
		out.Frames[i] = frameOutput{
			Index:        fr.Index,
			PoseDetected: fr.PoseDetected,
			LeftKneeDeg:  fr.LeftKneeDeg,
			RightKneeDeg: fr.RightKneeDeg,
			Findings:     fr.Findings,
			Lines:        fr.Lines,
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:    %s\n", out.SessionID)
	fmt.Printf("Source:     %s\n", out.Source)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Knee range: %s\n", kneeRange(out.Thresholds))
	fmt.Printf("Frames:     %d\n", len(out.Frames))

	fmt.Printf("\nAngle stats:\n")
	for _, joint := range feedback.TrackedJoints {
		st, ok := out.Stats[joint]
		if !ok {
			fmt.Printf("  %-11s  -\n", joint)
			continue
		}
		fmt.Printf("  %-11s  n=%-4d mean=%7.2f  sd=%6.2f  min=%7.2f  max=%7.2f\n",
			joint, st.Count, st.Mean, st.StdDev, st.Min, st.Max)
	}

	fmt.Printf("\n%-6s  %-4s  %8s  %8s  %s\n", "Frame", "Pose", "Left", "Right", "Findings")
	fmt.Printf("%-6s+-%-4s+-%8s+-%8s+-%s\n", "------", "----", "--------", "--------", "--------------------")
	for _, fr := range out.Frames {
		pose := "no"
		if fr.PoseDetected {
			pose = "yes"
		}
		kinds := make([]string, len(fr.Findings))
		for i, f := range fr.Findings {
			kinds[i] = fmt.Sprintf("%s:%s", f.Joint, f.Kind)
		}
		fmt.Printf("%-6d  %-4s  %8s  %8s  %s\n",
			fr.Index, pose, degrees(fr.LeftKneeDeg), degrees(fr.RightKneeDeg), strings.Join(kinds, " "))
	}
	return nil
}

// samplesFromRows keeps only frames that recorded both angles; frames evaluated
// remotely carry no angles and count as undetected here.
func samplesFromRows(rows []session.FrameRow) []report.Sample {
	out := make([]report.Sample, len(rows))
	for i, r := range rows {
		s := report.Sample{Index: r.Index}
		if r.PoseDetected && r.LeftKneeDeg != nil && r.RightKneeDeg != nil {
			s.PoseDetected = true
			s.Left = *r.LeftKneeDeg
			s.Right = *r.RightKneeDeg
		}
		out[i] = s
	}
	return out
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func degrees(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func kneeRange(flat map[string]float64) string {
	min, okMin := flat[feedback.KeyKneeMin]
	max, okMax := flat[feedback.KeyKneeMax]
	if !okMin || !okMax {
		return "-"
	}
	return fmt.Sprintf("%.0f-%.0f", min, max)
}

// #endregion output
