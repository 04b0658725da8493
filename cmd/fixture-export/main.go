package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/squat-coach/internal/config"
	"github.com/danielpatrickdp/squat-coach/internal/replay"
	"github.com/danielpatrickdp/squat-coach/internal/session"
)

// #region main

func main() {
	configDir := flag.String("config", ".", "directory holding squat_coach.cfg.json")
	dbPath := flag.String("db", "", "path to squat_coach.db (overrides db.path)")
	sessionID := flag.String("session", "", "session to export (default: latest)")
	last := flag.Int("last", 0, "export only the N most recent frames (0 = all)")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/fixture.json [--db path/to/db] [--session id] [--last N]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}

	if err := run(cfg.DB.Path, *sessionID, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, sessionID string, last int, outPath string) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	store, err := session.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	if sessionID == "" {
		latest, err := store.ListSessions(1)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(latest) == 0 {
			return fmt.Errorf("no sessions in %s", dbPath)
		}
		sessionID = latest[0].SessionID
	}

	f, err := replay.ExportSession(store, sessionID, last)
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(outPath, f); err != nil {
		return err
	}

	fmt.Printf("Exported %d frames from session %s to %s\n", len(f.Frames), sessionID, outPath)
	return nil
}

// #endregion export
