package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Generated 2 boxes")
	assert.Contains(t, buf.String(), "Generated 2 boxes (")
}

func TestLoggerFromContext(t *testing.T) {
	assert.NotNil(t, loggerFromContext(context.Background()))

	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	assert.Same(t, l, loggerFromContext(withLogger(context.Background(), l)))
}
