package incremental

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestHash_Deterministic(t *testing.T) {
	content := "Hello, World!"
	require.Equal(t, HashString(content), HashString(content))
	require.Equal(t, HashString(content), Hash([]byte(content)))
}

func TestHash_DifferentContentDiffers(t *testing.T) {
	require.NotEqual(t, HashString("Hello"), HashString("World"))
	// A single trailing newline is a change.
	require.NotEqual(t, HashString("body"), HashString("body\n"))
}

func TestHash_FixedLengthLowercaseHex(t *testing.T) {
	inputs := []string{
		"",
		"test",
		"ünïcødé ✓ 数学 $x^2$",
		strings.Repeat("long content ", 100_000),
		"\x00\xff\xfe",
	}
	for _, in := range inputs {
		got := HashString(in)
		require.Len(t, got, 2*FingerprintSize)
		require.Regexp(t, fingerprintPattern, got)
	}
}

func TestHash_NoCollisionsInSample(t *testing.T) {
	const n = 20_000
	seen := make(map[string]string, n)
	for i := 0; i < n; i++ {
		in := fmt.Sprintf("---\ntitle: post %d\n---\nbody %d", i, i*31)
		h := HashString(in)
		if prev, ok := seen[h]; ok {
			t.Fatalf("collision between %q and %q", prev, in)
		}
		seen[h] = in
	}
}
