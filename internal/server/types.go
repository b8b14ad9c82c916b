package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/metrics"
)

type (
	Server interface {
		Start(ctx context.Context) error
		Stop()
		Addr() net.Addr
		ConnectionsHandled() int64
	}

	Config struct {
		Address     string
		GracePeriod time.Duration

		// ReadTimeout bounds the wait for each command line. Zero waits forever.
		ReadTimeout time.Duration

		// MaxConnections caps concurrently served connections. Zero is unbounded.
		MaxConnections int

		Logger  log.Interface
		Metrics *metrics.Metrics
		Now     func() time.Time
	}

	server struct {
		config Config
		wg     sync.WaitGroup

		mu         sync.Mutex
		listener   net.Listener
		acceptDone chan struct{}

		done        chan struct{}
		stopOnce    sync.Once
		running     int32 // atomic
		connections int64 // atomic count of connections handled
	}
)

// BindError reports that the server could not listen on its address.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Address, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors.Cause see through the bind failure.
func (e *BindError) Cause() error { return e.Err }
