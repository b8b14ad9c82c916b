// Package protocol holds the wire constants shared by the command server and
// its client. Every message is a single UTF-8 line terminated by '\n'.
package protocol

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const (
	Welcome = "WELCOME: Simple TCP Server v1.0 - Ready for commands"

	CommandTime   = "TIME"
	CommandEcho   = "ECHO"
	CommandStatus = "STATUS"
	CommandQuit   = "QUIT"

	ResponseTime    = "TIME_RESPONSE: "
	ResponseEcho    = "ECHO_RESPONSE: "
	ResponseStatus  = "STATUS_RESPONSE: Server running, connections handled: "
	ResponseGoodbye = "GOODBYE: Connection closing"
	ResponseUnknown = "ERROR: Unknown command"

	// TimeLayout renders YYYY-MM-DD HH:MM:SS.
	TimeLayout = "2006-01-02 15:04:05"

	// MaxLineLength bounds a single inbound command, newline included.
	MaxLineLength = 1024
)

// echoPrefix is the 5-byte prefix that selects the ECHO command.
const echoPrefix = CommandEcho + " "

// IsQuit reports whether the line is the QUIT command, ignoring case and
// surrounding whitespace.
func IsQuit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), CommandQuit)
}

// EchoText returns the text that follows the ECHO prefix and whether the
// line is an ECHO command at all. A bare ECHO yields an empty text.
func EchoText(command string) (string, bool) {
	if strings.EqualFold(command, CommandEcho) {
		return "", true
	}
	if len(command) >= len(echoPrefix) && strings.EqualFold(command[:len(echoPrefix)], echoPrefix) {
		return command[len(echoPrefix):], true
	}
	return "", false
}

// WriteLine writes s followed by a newline.
func WriteLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}

// NewScanner returns a command scanner that reads at most MaxLineLength
// bytes per command. A longer line is split into successive commands of
// MaxLineLength bytes, so the scanner never fails on line length.
func NewScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, MaxLineLength), MaxLineLength)
	scanner.Split(scanChunks)
	return scanner
}

// scanChunks yields the bytes before a newline within the first
// MaxLineLength bytes, or a full MaxLineLength chunk when no newline fits.
func scanChunks(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	window := data
	if len(window) > MaxLineLength {
		window = window[:MaxLineLength]
	}
	if i := bytes.IndexByte(window, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if len(data) >= MaxLineLength {
		return MaxLineLength, data[:MaxLineLength], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
