package logging

import (
	"bytes"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, Level(true))
	assert.Equal(t, log.InfoLevel, Level(false))
}

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf, false)

	logger.Debug("hidden detail")
	logger.WithField("remote", "127.0.0.1:5000").Info("new connection")

	assert.NotContains(t, buf.String(), "hidden detail")
	assert.Contains(t, buf.String(), "new connection")
	assert.Contains(t, buf.String(), "127.0.0.1:5000")

	buf.Reset()
	logger = Setup(&buf, true)
	logger.Debug("shown detail")
	assert.Contains(t, buf.String(), "shown detail")
}
