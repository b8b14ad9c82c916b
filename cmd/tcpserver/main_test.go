package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/config"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/protocol"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/server"
)

// freePort finds a loopback port inside the range the server accepts.
func freePort(t *testing.T) int {
	t.Helper()

	for port := 20000; port < config.MaxServerPort; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		ln.Close()
		return port
	}
	t.Fatal("No free port available")
	return 0
}

func TestRunRejectsInvalidArguments(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{name: "Port below range", args: []string{"tcpserver", "1024"}, expectedErr: config.ErrPortRange},
		{name: "Port above range", args: []string{"tcpserver", "49152"}, expectedErr: config.ErrPortRange},
		{name: "Non numeric port", args: []string{"tcpserver", "eighty"}, expectedErr: config.ErrInvalidPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, io.Discard)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expectedErr), "Unexpected error: %v", err)
		})
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	port := strconv.Itoa(freePort(t))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"tcpserver", port, "-H", "127.0.0.1", "-g", "1"}, io.Discard)
	}()

	addr := net.JoinHostPort("127.0.0.1", port)
	var conn net.Conn
	require.Eventually(t, func() bool {
		var err error
		conn, err = net.Dial("tcp", addr)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond, "Server did not start")

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, protocol.Welcome, strings.TrimSpace(line))

	require.NoError(t, protocol.WriteLine(conn, "ECHO cli"))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ECHO_RESPONSE: cli", strings.TrimSpace(line))
	conn.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancellation")
	}

	_, err = net.Dial("tcp", addr)
	assert.Error(t, err, "Listener should be closed")
}

func TestRunReportsBindError(t *testing.T) {
	port := freePort(t)
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer ln.Close()

	err = run(context.Background(), []string{"tcpserver", strconv.Itoa(port), "-H", "127.0.0.1"}, io.Discard)
	var bindErr *server.BindError
	assert.True(t, errors.As(err, &bindErr), "Unexpected error: %v", err)
}
