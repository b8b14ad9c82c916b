package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/metrics"
	"github.com/ChaseA4280/Topics-in-networking-and-communication/internal/protocol"
)

type commandKind int

const (
	commandUnknown commandKind = iota
	commandTime
	commandEcho
	commandStatus
	commandQuit
)

func (k commandKind) label() string {
	switch k {
	case commandTime:
		return metrics.LabelTime
	case commandEcho:
		return metrics.LabelEcho
	case commandStatus:
		return metrics.LabelStatus
	case commandQuit:
		return metrics.LabelQuit
	default:
		return metrics.LabelUnknown
	}
}

func classify(command string) commandKind {
	switch {
	case strings.EqualFold(command, protocol.CommandTime):
		return commandTime
	case strings.EqualFold(command, protocol.CommandStatus):
		return commandStatus
	case strings.EqualFold(command, protocol.CommandQuit):
		return commandQuit
	}
	if _, ok := protocol.EchoText(command); ok {
		return commandEcho
	}
	return commandUnknown
}

func (s *server) handleRequest(command string) string {
	s.config.Metrics.ObserveCommand(classify(strings.TrimSpace(command)).label())
	return processCommand(command, s.config.Now(), s.ConnectionsHandled())
}

// processCommand maps one command line to its response. It depends only on
// the command text, the clock reading and the connection count.
func processCommand(command string, now time.Time, handled int64) string {
	command = strings.TrimSpace(command)

	switch classify(command) {
	case commandTime:
		return protocol.ResponseTime + now.Format(protocol.TimeLayout)
	case commandEcho:
		text, _ := protocol.EchoText(command)
		return protocol.ResponseEcho + text
	case commandStatus:
		return protocol.ResponseStatus + strconv.FormatInt(handled, 10)
	case commandQuit:
		return protocol.ResponseGoodbye
	default:
		return protocol.ResponseUnknown
	}
}
