package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitialize_ValidLevels(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		t.Run(lvl, func(t *testing.T) {
			err := Initialize(lvl, false)
			assert.NoError(t, err, "expected no error for level %s", lvl)
			assert.IsType(t, &zap.SugaredLogger{}, Log)

			assert.NotPanics(t, func() {
				Log.Infow("test log", "level", lvl)
			})
		})
	}
}

func TestInitialize_Development(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	assert.NoError(t, Initialize("debug", true))
	assert.True(t, Log.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestInitialize_InvalidLevel(t *testing.T) {
	originalLog := Log
	defer func() { Log = originalLog }()

	assert.Error(t, Initialize("not-a-level", false))
}

func TestOneLine(t *testing.T) {
	q := `
		SELECT id
		FROM users
		WHERE id = $1`
	assert.Equal(t, "SELECT id FROM users WHERE id = $1", OneLine(q))
}
