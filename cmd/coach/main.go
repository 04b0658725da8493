package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/squat-coach/internal/config"
	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/logging"
	"github.com/danielpatrickdp/squat-coach/internal/pose"
	"github.com/danielpatrickdp/squat-coach/internal/replay"
	"github.com/danielpatrickdp/squat-coach/internal/rpc"
	"github.com/danielpatrickdp/squat-coach/internal/session"
	"github.com/danielpatrickdp/squat-coach/internal/telemetry"
)

// #region main
type options struct {
	input    string
	remote   bool
	noRecord bool
}

func main() {
	configDir := flag.String("config", ".", "directory holding squat_coach.cfg.json")
	input := flag.String("input", "-", "JSON-lines landmark stream (- for stdin)")
	remote := flag.Bool("remote", false, "evaluate through the feedback service at grpc.addr")
	noRecord := flag.Bool("no-record", false, "do not record the session to the database")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logging.NewConsoleLogger(os.Stderr, cfg.LogLevel)

	thresholds, err := cfg.KneeThresholds()
	if err != nil {
		log.Error().Err(err).Msg("invalid thresholds")
		os.Exit(2)
	}

	opts := options{input: *input, remote: *remote, noRecord: *noRecord}
	if err := run(cfg, thresholds, opts, log); err != nil {
		log.Error().Err(err).Msg("coach stopped")
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(cfg config.Config, thresholds feedback.Thresholds, opts options, log zerolog.Logger) error {
	in, source, err := openInput(opts.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &coach{log: log}

	if opts.remote {
		client, err := rpc.NewClient(cfg.GRPC.Addr)
		if err != nil {
			return fmt.Errorf("connect to feedback service: %w", err)
		}
		defer client.Close()

		// Record the thresholds the server judges against, not the local ones.
		tctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		remoteTh, err := client.Thresholds(tctx)
		cancel()
		if err != nil {
			return fmt.Errorf("query service thresholds: %w", err)
		}
		if !reflect.DeepEqual(remoteTh, thresholds) {
			log.Warn().
				Interface("local", thresholds.Flat()).
				Interface("remote", remoteTh.Flat()).
				Msg("service thresholds differ from config; recording the service's")
		}
		thresholds = remoteTh

		c.evaluate = func(ctx context.Context, set *pose.Set) (feedback.Evaluation, error) {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return client.Evaluate(ctx, set)
		}
		source = "grpc:" + source
	} else {
		evaluator := feedback.NewEvaluator(thresholds)
		c.evaluate = func(_ context.Context, set *pose.Set) (feedback.Evaluation, error) {
			return evaluator.Run(set)
		}
	}

	if c.rec, err = telemetry.NewRecorder(nil); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	if !opts.noRecord {
		store, err := session.NewStore(cfg.DB.Path)
		if err != nil {
			return fmt.Errorf("open store %s: %w", cfg.DB.Path, err)
		}
		defer store.Close()
		sess, err := store.StartSession(source, thresholds)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		c.store = store
		c.sessionID = sess.SessionID
		log.Info().Str("session", sess.SessionID).Str("db", cfg.DB.Path).Msg("recording session")
	}

	// Unblock a pending read on interrupt.
	go func() {
		<-ctx.Done()
		in.Close()
	}()

	err = replay.ScanFrames(in, func(fr replay.Frame) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return c.handle(ctx, os.Stdout, fr)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("after %d frames: %w", c.frames, err)
	}

	log.Info().Int("frames", c.frames).Int("risk_frames", c.riskFrames).Msg("done")
	return nil
}

// #endregion run

// #region coach
type coach struct {
	evaluate   func(context.Context, *pose.Set) (feedback.Evaluation, error)
	rec        *telemetry.Recorder
	store      *session.Store
	sessionID  string
	log        zerolog.Logger
	frames     int
	riskFrames int
}

func (c *coach) handle(ctx context.Context, w io.Writer, fr replay.Frame) error {
	ev, err := c.evaluate(ctx, fr.Landmarks)
	if err != nil {
		return fmt.Errorf("frame %d: %w", fr.Index, err)
	}
	c.frames++
	if len(ev.Findings) > 0 {
		c.riskFrames++
	}
	c.rec.Record(ctx, ev)

	fmt.Fprintf(w, "[frame %d]\n", fr.Index)
	for _, line := range ev.Lines {
		fmt.Fprintln(w, line)
	}

	if c.store != nil {
		if err := c.store.RecordFrame(c.sessionID, fr.Index, fr.Landmarks, ev); err != nil {
			return fmt.Errorf("record frame %d: %w", fr.Index, err)
		}
	}
	return nil
}

// #endregion coach

// #region helpers
func openInput(path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return os.Stdin, "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

// #endregion helpers
