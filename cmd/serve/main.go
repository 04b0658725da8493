package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/danielpatrickdp/squat-coach/internal/config"
	"github.com/danielpatrickdp/squat-coach/internal/feedback"
	"github.com/danielpatrickdp/squat-coach/internal/logging"
	"github.com/danielpatrickdp/squat-coach/internal/rpc"
	"github.com/danielpatrickdp/squat-coach/internal/telemetry"
)

func main() {
	configDir := flag.String("config", ".", "directory holding squat_coach.cfg.json")
	addr := flag.String("addr", "", "listen address (overrides grpc.addr)")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := logging.NewLogger(os.Stderr, cfg.LogLevel)

	thresholds, err := cfg.KneeThresholds()
	if err != nil {
		log.Error().Err(err).Msg("invalid thresholds")
		os.Exit(2)
	}
	if *addr != "" {
		cfg.GRPC.Addr = *addr
	}

	if err := run(cfg.GRPC.Addr, thresholds, log); err != nil {
		log.Error().Err(err).Msg("serve")
		os.Exit(1)
	}
}

func run(addr string, thresholds feedback.Thresholds, log zerolog.Logger) error {
	rec, err := telemetry.NewRecorder(nil)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := grpc.NewServer()
	rpc.Register(srv, rpc.NewServer(feedback.NewEvaluator(thresholds), rec, log))

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	log.Info().
		Str("addr", lis.Addr().String()).
		Interface("thresholds", thresholds.Flat()).
		Msg("feedback service listening")

	return srv.Serve(lis)
}
