package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Run("deterministic across calls", func(t *testing.T) {
		a := Fingerprint("http://example.com/live.ts", "token-1")
		b := Fingerprint("http://example.com/live.ts", "token-1")
		assert.Equal(t, a, b)
	})

	t.Run("distinct tokens give distinct ids", func(t *testing.T) {
		a := Fingerprint("http://example.com/live.ts", "tenant-a")
		b := Fingerprint("http://example.com/live.ts", "tenant-b")
		assert.NotEqual(t, a, b)
	})

	t.Run("distinct urls give distinct ids", func(t *testing.T) {
		a := Fingerprint("http://example.com/one.ts", "")
		b := Fingerprint("http://example.com/two.ts", "")
		assert.NotEqual(t, a, b)
	})

	t.Run("absent token equals empty token", func(t *testing.T) {
		assert.Equal(t, Fingerprint("http://example.com/live.ts", ""), Fingerprint("http://example.com/live.ts", ""))
	})

	t.Run("stable wire format", func(t *testing.T) {
		// md5 of the empty string
		assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Fingerprint("", ""))
		assert.Len(t, Fingerprint("http://example.com/live.ts", "x"), 32)
	})
}
