package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/client"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/config"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/logging"
)

// pause between the two demo connections
var demoPause = time.Second

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	parsed, err := config.ParseClientArgs(args)
	if err != nil {
		return err
	}

	logger := logging.Setup(stderr, parsed.Verbose)

	c := client.New(client.Config{
		Address:     parsed.Address(),
		DialTimeout: parsed.DialTimeout,
		IOTimeout:   parsed.DialTimeout,
		Logger:      logger,
	})

	c.RunDemo(ctx, stdout, demoPause)
	c.RunInteractive(ctx, client.NewInput(stdin), stdout)

	logger.Debug("client finished")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.Message(err))
		os.Exit(1)
	}
}
