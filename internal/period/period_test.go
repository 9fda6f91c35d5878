package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAndBounds(t *testing.T) {
	t.Parallel()

	m, err := Parse("2025-11")
	require.NoError(t, err)
	require.Equal(t, "2025-11", m.String())

	start, end := m.Bounds()
	require.Equal(t, "2025-11-01", start)
	require.Equal(t, "2025-12-01", end)

	// ISO dates sort lexicographically, so the bounds bracket the month.
	require.True(t, "2025-11-01" >= start && "2025-11-01" < end)
	require.True(t, "2025-11-30" >= start && "2025-11-30" < end)
	require.False(t, "2025-12-01" < end)
}

func TestBoundsYearRollover(t *testing.T) {
	t.Parallel()

	m, err := Parse("2025-12")
	require.NoError(t, err)
	start, end := m.Bounds()
	require.Equal(t, "2025-12-01", start)
	require.Equal(t, "2026-01-01", end)
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "2025-13", "2025-1", "25-11", "2025/11", "2025-11-01", "abcd-ef"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrInvalidMonth, "input %q", in)
	}
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-02", Current(now).String())
}
