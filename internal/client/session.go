package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/protocol"
)

const (
	DemoEcho = "ECHO Hello from TCP Client!"

	continuePrompt    = "Would you like to test more commands? (y/n): "
	availableCommands = "Available commands: TIME, ECHO [message], STATUS"
)

var separator = strings.Repeat("=", 50)

// RunDemo performs two independent round-trips, TIME then an ECHO, waiting
// pause between them. A failed round-trip is reported on out and does not
// stop the demo.
func (c *Client) RunDemo(ctx context.Context, out io.Writer, pause time.Duration) {
	banner(out, "TCP CLIENT DEMONSTRATION")

	banner(out, "FIRST CONNECTION - TIME COMMAND")
	c.report(ctx, out, protocol.CommandTime)

	select {
	case <-ctx.Done():
		return
	case <-time.After(pause):
	}

	banner(out, "SECOND CONNECTION - ECHO COMMAND")
	c.report(ctx, out, DemoEcho)

	banner(out, "CLIENT DEMONSTRATION COMPLETE")
}

// Input feeds lines from a reader to sequential RunInteractive calls. Its
// reading goroutine lives as long as the reader does, so create one Input
// per reader and reuse it instead of wrapping the same reader twice.
type Input struct {
	lines chan string
}

func NewInput(r io.Reader) *Input {
	in := &Input{lines: make(chan string)}
	go func() {
		defer close(in.lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			in.lines <- scanner.Text()
		}
	}()
	return in
}

// RunInteractive asks on out whether to run another command and executes
// each command read from in on a fresh connection. It returns when the
// answer is not "y", when in is exhausted, or when ctx is done. Lines not
// consumed before it returns stay in in for the next call.
func (c *Client) RunInteractive(ctx context.Context, in *Input, out io.Writer) {
	next := func() (string, bool) {
		select {
		case <-ctx.Done():
			return "", false
		case line, ok := <-in.lines:
			return strings.TrimSpace(line), ok
		}
	}

	for {
		fmt.Fprint(out, "\n"+continuePrompt)
		answer, ok := next()
		if !ok {
			fmt.Fprintln(out, "\nExiting...")
			return
		}
		if !strings.EqualFold(answer, "y") {
			return
		}

		fmt.Fprintln(out, availableCommands)
		fmt.Fprint(out, "Enter command: ")
		command, ok := next()
		if !ok {
			fmt.Fprintln(out, "\nExiting...")
			return
		}
		if command == "" {
			continue
		}

		fmt.Fprintf(out, "\n--- Testing command: %s ---\n", command)
		c.report(ctx, out, command)
	}
}

func (c *Client) report(ctx context.Context, out io.Writer, command string) {
	result, err := c.Execute(ctx, command)
	if err != nil {
		if errors.Is(err, ErrConnectionRefused) {
			fmt.Fprintf(out, "Error: Could not connect to server at %s\n", c.config.Address)
			fmt.Fprintln(out, "Make sure the server is running.")
			return
		}
		fmt.Fprintf(out, "Client error: %v\n", err)
		return
	}

	fmt.Fprintf(out, "Server welcome: %s\n", result.Welcome)
	fmt.Fprintf(out, "Server response: %s\n", result.Response)
	fmt.Fprintf(out, "Server goodbye: %s\n", result.Goodbye)
}

func banner(out io.Writer, title string) {
	fmt.Fprintf(out, "\n%s\n%s\n%s\n", separator, title, separator)
}
