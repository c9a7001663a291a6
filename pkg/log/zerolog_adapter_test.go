package log_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestAdapter(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.NewZerologAdapter(zerolog.New(out))

	logger.Info().
		Str("unit", "test").
		Int("n", 1).
		Bool("ok", true).
		Dur("took", 1500*time.Millisecond).
		Err(errors.New("boom")).
		Msg("hello")

	assert.Contains(t, out.String(), `"unit":"test"`)
	assert.Contains(t, out.String(), `"n":1`)
	assert.Contains(t, out.String(), `"ok":true`)
	assert.Contains(t, out.String(), `"error":"boom"`)
	assert.Contains(t, out.String(), `"message":"hello"`)
}

func TestAdapterContext(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.NewZerologAdapter(zerolog.New(out)).With().Int("row_index", 2).Logger()

	logger.Warn().Msg("slow row")
	assert.Contains(t, out.String(), `"row_index":2`)
	assert.Contains(t, out.String(), `"level":"warn"`)
}

func TestNewRespectsLevel(t *testing.T) {
	out := &bytes.Buffer{}
	logger := log.New(out, zerolog.InfoLevel)

	logger.Debug().Msg("hidden")
	assert.Empty(t, out.String())

	logger.Info().Msg("shown")
	assert.Contains(t, out.String(), "shown")
}

func TestOrNop(t *testing.T) {
	assert.NotPanics(t, func() {
		log.OrNop(nil).Info().Str("k", "v").Msg("discarded")
	})
}
