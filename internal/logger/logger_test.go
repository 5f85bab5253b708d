package logger

import (
	"bytes"
	"pickleball-sim/internal/config"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_UsesConfiguredLevel(t *testing.T) {
	for _, level := range []zerolog.Level{zerolog.DebugLevel, zerolog.InfoLevel, zerolog.ErrorLevel} {
		t.Run(level.String(), func(t *testing.T) {
			assert.Equal(t, level, New(&config.Config{LogLevel: level}).GetLevel())
		})
	}
}

func TestSetLevel_Filters(t *testing.T) {
	var buf bytes.Buffer
	l := SetLevel(&buf, zerolog.WarnLevel)

	l.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	l.Warn().Str("match_id", "m1").Msg("loud")
	assert.Contains(t, buf.String(), `"match_id":"m1"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
