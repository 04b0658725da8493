package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/squat-coach/internal/config"
	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/replay"
	"github.com/danielpatrickdp/squat-coach/internal/report"
	"github.com/danielpatrickdp/squat-coach/internal/session"
)

// #region main

func main() {
	configDir := flag.String("config", ".", "directory holding squat_coach.cfg.json")
	dbPath := flag.String("db", "", "path to squat_coach.db (DB mode)")
	sessionID := flag.String("session", "", "session to re-evaluate in DB mode (default: latest)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	plotPath := flag.String("plot", "", "write a knee-angle chart (.png or .svg)")
	verbose := flag.Bool("v", false, "print line diffs for diverging frames")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/squat_coach.db [--session id] [--plot out.png]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json [--plot out.png]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	var run *runResult
	var exitCode int
	if *fixturePath != "" {
		run, exitCode = runFixtureMode(*fixturePath)
	} else {
		run, exitCode = runDBMode(*dbPath, *sessionID)
	}
	if run == nil {
		os.Exit(exitCode)
	}

	if code := printComparison(run, *verbose); code > exitCode {
		exitCode = code
	}

	if *plotPath != "" {
		if err := writePlot(plotLocation(*plotPath, cfg.Report.Dir), run); err != nil {
			fmt.Fprintf(os.Stderr, "plot: %v\n", err)
			exitCode = 2
		}
	}
	os.Exit(exitCode)
}

// #endregion main

// runResult is a replay plus the reference lines it is compared against.
type runResult struct {
	results    []replay.FrameResult
	expected   map[int][]string
	thresholds feedback.Thresholds
}

// #region fixture-mode

func runFixtureMode(path string) (*runResult, int) {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return nil, 2
	}
	thresholds, err := f.KneeThresholds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture thresholds: %v\n", err)
		return nil, 2
	}
	frames, err := f.ToFrames()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture frames: %v\n", err)
		return nil, 2
	}

	results, err := replay.Replay(frames, feedback.NewEvaluator(thresholds))
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return nil, 2
	}

	expected := make(map[int][]string, len(f.Expected))
	for _, e := range f.Expected {
		expected[e.Index] = e.Lines
	}
	return &runResult{results: results, expected: expected, thresholds: thresholds}, 0
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath, sessionID string) (*runResult, int) {
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return nil, 2
	}
	store, err := session.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return nil, 2
	}
	defer store.Close()

	if sessionID == "" {
		latest, err := store.ListSessions(1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list sessions: %v\n", err)
			return nil, 2
		}
		if len(latest) == 0 {
			fmt.Fprintln(os.Stderr, "no sessions found")
			return nil, 2
		}
		sessionID = latest[0].SessionID
	}

	sess, err := store.GetSession(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get session: %v\n", err)
		return nil, 2
	}
	rows, err := store.ListFrames(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list frames: %v\n", err)
		return nil, 2
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "session %s has no frames\n", sessionID)
		return nil, 2
	}

	frames := make([]replay.Frame, len(rows))
	expected := make(map[int][]string, len(rows))
	for i, r := range rows {
		frames[i] = replay.Frame{Index: r.Index, Landmarks: r.Landmarks}
		expected[r.Index] = r.Lines
	}

	results, err := replay.Replay(frames, feedback.NewEvaluator(sess.Thresholds))
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return nil, 2
	}
	fmt.Printf("Session %s (%s)\n\n", sess.SessionID, sess.Source)
	return &runResult{results: results, expected: expected, thresholds: sess.Thresholds}, 0
}

// #endregion db-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(run *runResult, verbose bool) int {
	fmt.Printf("%-6s| %-28s| %-28s| %s\n", "Frame", "Expected", "Replayed", "Match")
	fmt.Printf("%-6s+%-29s+%-29s+%s\n",
		"------", "-----------------------------", "-----------------------------", "------")

	matches, compared := 0, 0
	for _, r := range run.results {
		exp, ok := run.expected[r.Index]
		if !ok {
			fmt.Printf("%-6d| %-28s| %-28s| %s\n", r.Index, "-", brief(r.Evaluation.Lines), "SKIP")
			continue
		}
		compared++
		match := "DIFF"
		diff := cmp.Diff(exp, r.Evaluation.Lines)
		if diff == "" {
			match = "OK"
			matches++
		}
		fmt.Printf("%-6d| %-28s| %-28s| %s\n", r.Index, brief(exp), brief(r.Evaluation.Lines), match)
		if diff != "" && verbose {
			fmt.Printf("%s\n", diff)
		}
	}

	s := replay.Summarize(run.results)
	diverge := compared - matches
	fmt.Printf("\nSummary: %d frames, %d no pose, %d good, %d at risk (%d under, %d over)\n",
		s.TotalFrames, s.NoPose, s.GoodFrames, s.RiskFrames, s.Underbends, s.Overbends)
	fmt.Printf("Compared: %d total, %d match, %d diverge\n", compared, matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

// brief condenses a frame's lines into one table cell.
func brief(lines []string) string {
	switch len(lines) {
	case 0:
		return "(none)"
	case 1:
		if lines[0] == feedback.MsgNoPose {
			return "no pose"
		}
	}
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		switch {
		case l == feedback.MsgGoodForm:
			parts = append(parts, "good")
		case l == feedback.MsgTooShallow:
			parts = append(parts, "shallow")
		case l == feedback.MsgTooLow:
			parts = append(parts, "low")
		case l == feedback.MsgNoRisk:
			parts = append(parts, "safe")
		case strings.HasPrefix(l, "Risk Analysis:"):
			parts = append(parts, fmt.Sprintf("risk×%d", strings.Count(l, "\n")))
		default:
			parts = append(parts, "?")
		}
	}
	return strings.Join(parts, " ")
}

func plotLocation(path, reportDir string) string {
	if filepath.IsAbs(path) || filepath.Dir(path) != "." || reportDir == "" {
		return path
	}
	return filepath.Join(reportDir, path)
}

func writePlot(path string, run *runResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	indices := make([]int, len(run.results))
	for i, r := range run.results {
		indices[i] = r.Index
	}
	samples, err := report.SamplesFromEvaluations(indices, replay.Evaluations(run.results))
	if err != nil {
		return err
	}
	if err := report.WriteKneePlot(path, samples, run.thresholds); err != nil {
		return err
	}
	fmt.Printf("Chart written to %s\n", path)
	return nil
}

// #endregion output
