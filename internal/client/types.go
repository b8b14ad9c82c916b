package client

import (
	"fmt"
	"net"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// State is a step of a single client round-trip.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateWelcomed
	StateCommandSent
	StateResponseReceived
	StateQuitSent
	StateGoodbyeReceived
	StateClosed
)

var stateNames = [...]string{
	StateDisconnected:     "DISCONNECTED",
	StateConnected:        "CONNECTED",
	StateWelcomed:         "WELCOMED",
	StateCommandSent:      "COMMAND_SENT",
	StateResponseReceived: "RESPONSE_RECEIVED",
	StateQuitSent:         "QUIT_SENT",
	StateGoodbyeReceived:  "GOODBYE_RECEIVED",
	StateClosed:           "CLOSED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

var (
	ErrConnectionRefused = errors.New("connection refused")
	ErrInvalidCommand    = errors.New("command must be a single line")
)

// StateError is returned by Execute when the round-trip fails. State is the
// last state reached before the failure.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

func (e *StateError) Cause() error { return e.Err }

type (
	Config struct {
		Address     string
		DialTimeout time.Duration

		// IOTimeout bounds each read and write. Zero disables deadlines.
		IOTimeout time.Duration

		Logger log.Interface
	}

	// Result holds the lines received during one round-trip.
	Result struct {
		Welcome  string
		Response string
		Goodbye  string
		State    State
	}

	Client struct {
		config Config
		dialer net.Dialer
	}
)
