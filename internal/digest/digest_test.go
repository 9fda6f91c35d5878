package digest

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var hexRe = regexp.MustCompile(`^[0-9a-f]+$`)

func TestHexIsStableAndFixedLength(t *testing.T) {
	t.Parallel()

	a := Hex("mp|ref1|12-11-2025|-150,00")
	b := Hex("mp|ref1|12-11-2025|-150,00")
	require.Equal(t, a, b)
	require.Len(t, a, 40)
	require.Regexp(t, hexRe, a)

	// Known SHA-1 vector.
	require.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", Hex("abc"))
}

func TestDedupKeyIsPrefix(t *testing.T) {
	t.Parallel()

	in := "inter|01/11/2025|Pix enviado|Fulano|-10,00|90,00"
	key := DedupKey(in)
	require.Len(t, key, KeyLength)
	require.Equal(t, Hex(in)[:KeyLength], key)
	require.NotEqual(t, key, DedupKey(in+" "))
}
