// Package client talks to the command server one connection per command.
package client

import (
	"bufio"
	"context"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/protocol"
)

const (
	defaultAddress     = "localhost:8888"
	defaultDialTimeout = 5 * time.Second
)

func New(config Config) *Client {
	if config.Address == "" {
		config.Address = defaultAddress
	}

	if config.DialTimeout <= 0 {
		config.DialTimeout = defaultDialTimeout
	}

	if config.Logger == nil {
		config.Logger = log.Log
	}
	return &Client{config: config, dialer: net.Dialer{Timeout: config.DialTimeout}}
}

func (c *Client) Address() string {
	return c.config.Address
}

// Execute opens a new connection, reads the welcome line, sends command,
// reads its response, then sends QUIT and reads the goodbye. The connection
// is closed on every path.
func (c *Client) Execute(ctx context.Context, command string) (Result, error) {
	var result Result
	state := StateDisconnected
	logger := c.config.Logger.WithFields(log.Fields{"addr": c.config.Address, "command": command})

	fail := func(err error) (Result, error) {
		logger.WithError(err).WithField("state", state.String()).Error("client error")
		result.State = StateClosed
		return result, &StateError{State: state, Err: err}
	}
	advance := func(next State) {
		state = next
		logger.WithField("state", state.String()).Debug("state changed")
	}

	if strings.ContainsAny(command, "\r\n") {
		return fail(ErrInvalidCommand)
	}

	logger.Info("connecting")
	conn, err := c.dialer.DialContext(ctx, "tcp", c.config.Address)
	if err != nil {
		return fail(c.dialError(err))
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.WithError(err).Debug("error closing connection")
		}
		logger.Info("connection closed")
	}()
	advance(StateConnected)

	// unblock reads and writes once the caller gives up
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	reader := bufio.NewReader(conn)

	if result.Welcome, err = c.readLine(conn, reader); err != nil {
		return fail(errors.Wrap(err, "read welcome"))
	}
	advance(StateWelcomed)
	logger.WithField("welcome", result.Welcome).Info("server welcome")

	if err = c.writeLine(conn, command); err != nil {
		return fail(errors.Wrap(err, "send command"))
	}
	advance(StateCommandSent)

	if result.Response, err = c.readLine(conn, reader); err != nil {
		return fail(errors.Wrap(err, "read response"))
	}
	advance(StateResponseReceived)
	logger.WithField("response", result.Response).Info("server response")

	// the server has already said goodbye and closed its side
	if protocol.IsQuit(command) {
		result.Goodbye = result.Response
		advance(StateGoodbyeReceived)
		result.State = StateClosed
		return result, nil
	}

	if err = c.writeLine(conn, protocol.CommandQuit); err != nil {
		return fail(errors.Wrap(err, "send quit"))
	}
	advance(StateQuitSent)

	if result.Goodbye, err = c.readLine(conn, reader); err != nil {
		return fail(errors.Wrap(err, "read goodbye"))
	}
	advance(StateGoodbyeReceived)
	logger.WithField("goodbye", result.Goodbye).Info("server goodbye")

	result.State = StateClosed
	return result, nil
}

func (c *Client) dialError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return errors.Wrapf(ErrConnectionRefused, "could not connect to server at %s", c.config.Address)
	}
	return errors.Wrapf(err, "connect to %s", c.config.Address)
}

func (c *Client) readLine(conn net.Conn, reader *bufio.Reader) (string, error) {
	if c.config.IOTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(c.config.IOTimeout)); err != nil {
			return "", err
		}
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Client) writeLine(conn net.Conn, line string) error {
	if c.config.IOTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(c.config.IOTimeout)); err != nil {
			return err
		}
	}
	return protocol.WriteLine(conn, line)
}
