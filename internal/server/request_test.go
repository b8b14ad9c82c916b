package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessCommand(t *testing.T) {
	now := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.Local)

	tests := []struct {
		name           string
		input          string
		handled        int64
		expectedOutput string
	}{
		{name: "Time", input: "TIME", expectedOutput: "TIME_RESPONSE: 2024-03-05 07:08:09"},
		{name: "Time lower case", input: "time", expectedOutput: "TIME_RESPONSE: 2024-03-05 07:08:09"},
		{name: "Time mixed case", input: "Time", expectedOutput: "TIME_RESPONSE: 2024-03-05 07:08:09"},
		{name: "Time surrounded by whitespace", input: "  TIME \r\n", expectedOutput: "TIME_RESPONSE: 2024-03-05 07:08:09"},
		{name: "Echo", input: "ECHO Hello from TCP Client!", expectedOutput: "ECHO_RESPONSE: Hello from TCP Client!"},
		{name: "Echo lower case", input: "echo hi", expectedOutput: "ECHO_RESPONSE: hi"},
		{name: "Echo keeps internal whitespace", input: "ECHO a  b   c", expectedOutput: "ECHO_RESPONSE: a  b   c"},
		{name: "Echo keeps text case", input: "eChO MiXeD", expectedOutput: "ECHO_RESPONSE: MiXeD"},
		{name: "Bare echo", input: "ECHO", expectedOutput: "ECHO_RESPONSE: "},
		{name: "Echo with trailing space only", input: "ECHO   ", expectedOutput: "ECHO_RESPONSE: "},
		{name: "Status", input: "STATUS", handled: 7, expectedOutput: "STATUS_RESPONSE: Server running, connections handled: 7"},
		{name: "Status lower case", input: "status", handled: 1, expectedOutput: "STATUS_RESPONSE: Server running, connections handled: 1"},
		{name: "Quit", input: "QUIT", expectedOutput: "GOODBYE: Connection closing"},
		{name: "Quit lower case", input: "quit", expectedOutput: "GOODBYE: Connection closing"},
		{name: "Unknown", input: "FOO", expectedOutput: "ERROR: Unknown command"},
		{name: "Empty line", input: "", expectedOutput: "ERROR: Unknown command"},
		{name: "Prefix of known command", input: "TIMES", expectedOutput: "ERROR: Unknown command"},
		{name: "Echo without separator", input: "ECHOhi", expectedOutput: "ERROR: Unknown command"},
		{name: "Status with argument", input: "STATUS now", expectedOutput: "ERROR: Unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedOutput, processCommand(tt.input, now, tt.handled))
		})
	}
}

func TestClassifyLabels(t *testing.T) {
	assert.Equal(t, "time", classify("time").label())
	assert.Equal(t, "echo", classify("ECHO x").label())
	assert.Equal(t, "status", classify("Status").label())
	assert.Equal(t, "quit", classify("QUIT").label())
	assert.Equal(t, "unknown", classify("FOO").label())
}
