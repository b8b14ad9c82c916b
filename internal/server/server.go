package server

import (
	"context"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/metrics"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/protocol"
)

const (
	defaultGracePeriod = 3 * time.Second
	defaultAddress     = "localhost:8888"

	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

func NewServer(config Config) Server {
	if config.Address == "" {
		config.Address = defaultAddress
	}

	if config.GracePeriod <= 0 {
		config.GracePeriod = defaultGracePeriod
	}

	if config.Logger == nil {
		config.Logger = log.Log
	}

	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}

	if config.Now == nil {
		config.Now = time.Now
	}
	return &server{config: config, done: make(chan struct{})}
}

func (s *server) Start(shutdownCtx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return &BindError{Address: s.config.Address, Err: err}
	}

	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}

	acceptDone := make(chan struct{})
	s.mu.Lock()
	s.listener = listener
	s.acceptDone = acceptDone
	s.mu.Unlock()
	atomic.StoreInt32(&s.running, 1)

	s.config.Logger.WithFields(log.Fields{
		"addr":            listener.Addr().String(),
		"max_connections": s.config.MaxConnections,
	}).Info("server started, waiting for connections")

	go func() {
		select {
		case <-shutdownCtx.Done():
			s.shutdown()
		case <-s.done:
		}
	}()

	go func() {
		defer close(acceptDone)
		s.acceptLoop(listener)
	}()
	return nil
}

func (s *server) acceptLoop(listener net.Listener) {
	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.isRunning() || errors.Is(err, net.ErrClosed) {
				return // shutdown in progress
			}

			s.config.Metrics.AcceptErrors.Inc()
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff *= 2
			}
			if backoff > maxAcceptBackoff {
				backoff = maxAcceptBackoff
			}
			s.config.Logger.WithError(err).WithDuration(backoff).Error("error accepting connection")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// Stop closes the listener and waits up to the grace period for handlers to
// finish. Handlers still running afterwards are left to drain on their own.
// Stop on a server that was never started does nothing.
func (s *server) Stop() {
	s.mu.Lock()
	acceptDone := s.acceptDone
	s.mu.Unlock()
	if acceptDone == nil {
		return
	}

	s.stopOnce.Do(func() {
		s.config.Logger.Info("shutting down")
		s.shutdown()

		done := make(chan struct{})
		go func() {
			<-acceptDone
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(s.config.GracePeriod):
			s.config.Logger.WithField("grace_period", s.config.GracePeriod.String()).
				Warn("grace period exceeded, connections left to drain")
		}

		s.config.Logger.WithField("connections_handled", s.ConnectionsHandled()).Info("shutdown complete")
	})
}

// shutdown flips the running flag and closes the listener exactly once.
func (s *server) shutdown() {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return
	}
	close(s.done)

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	if err := listener.Close(); err != nil {
		s.config.Logger.WithError(err).Warn("error closing listener")
	}
}

func (s *server) isRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

func (s *server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *server) ConnectionsHandled() int64 {
	return atomic.LoadInt64(&s.connections)
}

func (s *server) handleConnection(conn net.Conn) {
	logger := s.config.Logger.WithField("remote", conn.RemoteAddr().String())

	defer func() {
		if err := conn.Close(); err != nil {
			logger.WithError(err).Debug("error closing connection")
		}
		s.config.Metrics.ActiveConnections.Dec()
		logger.Info("connection closed")
		s.wg.Done()
	}()

	count := atomic.AddInt64(&s.connections, 1)
	s.config.Metrics.ConnectionsTotal.Inc()
	s.config.Metrics.ActiveConnections.Inc()
	logger.WithField("count", count).Info("new connection")

	if err := protocol.WriteLine(conn, protocol.Welcome); err != nil {
		s.connectionError(logger, errors.Wrap(err, "send welcome"))
		return
	}
	logger.Debug("sent welcome message")

	scanner := protocol.NewScanner(conn)
	for {
		if s.config.ReadTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
				s.connectionError(logger, errors.Wrap(err, "set read deadline"))
				return
			}
		}

		if !scanner.Scan() {
			break
		}

		command := strings.TrimSpace(scanner.Text())
		logger.WithField("command", command).Info("received")

		response := s.handleRequest(command)
		if err := protocol.WriteLine(conn, response); err != nil {
			s.connectionError(logger, errors.Wrapf(err, "send response to %q", command))
			return
		}
		logger.WithField("response", response).Info("sent")

		if protocol.IsQuit(command) {
			return
		}
	}

	// a nil error here is a clean end-of-stream from the peer
	if err := scanner.Err(); err != nil {
		s.connectionError(logger, errors.Wrap(err, "read command"))
	}
}

func (s *server) connectionError(logger *log.Entry, err error) {
	s.config.Metrics.ConnectionErrors.Inc()
	logger.WithError(err).Error("error handling client")
}
