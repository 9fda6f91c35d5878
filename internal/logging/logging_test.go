package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(&buf, "info", "json")
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Int("inserted", 3).Msg("import complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "import complete", entry["message"])
	require.Equal(t, float64(3), entry["inserted"])
	require.Equal(t, "info", entry["level"])
	require.Contains(t, entry, "time")
}

func TestConsoleLoggerWithoutColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(&buf, "debug", "console")
	require.NoError(t, err)

	log.Debug().Str("month", "2025-11").Msg("reclassify")
	out := buf.String()
	require.Contains(t, out, "reclassify")
	require.Contains(t, out, "month=2025-11")
	require.NotContains(t, out, "\x1b[")
}

func TestInvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(&bytes.Buffer{}, "loud", "json")
	require.Error(t, err)
}
