package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/config"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/logging"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/metrics"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/server"
)

func run(ctx context.Context, args []string, stderr io.Writer) error {
	parsed, err := config.ParseServerArgs(args)
	if err != nil {
		return err
	}

	logger := logging.Setup(stderr, parsed.Verbose)
	m := metrics.New()

	if parsed.MetricsAddr != "" {
		exporter, err := m.Listen(parsed.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer exporter.Close()
	}

	s := server.NewServer(server.Config{
		Address:        parsed.Address(),
		GracePeriod:    parsed.GracePeriod,
		ReadTimeout:    parsed.ReadTimeout,
		MaxConnections: parsed.MaxConnections,
		Logger:         logger,
		Metrics:        m,
	})
	if err := s.Start(ctx); err != nil {
		return err
	}
	logger.Info("press Ctrl+C to stop the server")

	<-ctx.Done()

	logger.Info("shutting down server")
	s.Stop()
	logger.WithField("count", s.ConnectionsHandled()).Info("server stopped")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.Message(err))
		os.Exit(1)
	}
}
