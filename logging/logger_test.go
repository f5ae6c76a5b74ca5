package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// Interface compliance (compile-time assertions)
var (
	_ Logger = NoOpLogger{}
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*ZerologAdapter)(nil)
)

func TestSlogAdapter_Formats(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))
	l.Info("dispatched to %s (%d attempts)", "order_agent", 2)

	assert.Contains(t, buf.String(), "dispatched to order_agent (2 attempts)")
}

func TestZerologAdapter_Formats(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(zerolog.New(&buf))
	l.Warn("agent %s unreachable", "fulfillment_agent")

	assert.Contains(t, buf.String(), "agent fulfillment_agent unreachable")
}
