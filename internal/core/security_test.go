// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/postgate/internal/config"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(config.SecurityConfig{
		ArgonMemoryKiB:   1024,
		ArgonIterations:  1,
		ArgonParallelism: 1,
	})
	require.NoError(t, err)
	return h
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	passwords := []string{"pw1", "correct horse battery staple", "ünïcödé-🔑", " "}
	for _, pw := range passwords {
		encoded, err := h.Hash(pw)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
		assert.NotContains(t, encoded, pw+"$")
		assert.True(t, h.Verify(pw, encoded), "password %q", pw)
		assert.False(t, h.Verify(pw+"x", encoded), "password %q", pw)
	}
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := newTestHasher(t)

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$onlyfive",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}

	for _, enc := range malformed {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("anything", enc), "hash %q", enc)
		})
	}
}

func TestHasher_VerifyWithRehash(t *testing.T) {
	weak, err := NewHasher(config.SecurityConfig{
		ArgonMemoryKiB:   512,
		ArgonIterations:  1,
		ArgonParallelism: 1,
	})
	require.NoError(t, err)
	strong := newTestHasher(t)

	oldHash, err := weak.Hash("pw")
	require.NoError(t, err)

	ok, newHash := strong.VerifyWithRehash("pw", oldHash)
	assert.True(t, ok)
	require.NotEmpty(t, newHash)
	assert.True(t, strong.Verify("pw", newHash))

	ok, newHash = strong.VerifyWithRehash("pw", newHash)
	assert.True(t, ok)
	assert.Empty(t, newHash)

	ok, newHash = strong.VerifyWithRehash("wrong", oldHash)
	assert.False(t, ok)
	assert.Empty(t, newHash)
}

func TestHasher_VerifyTimingSafe(t *testing.T) {
	h := newTestHasher(t)

	ok, _ := h.VerifyTimingSafe("pw", nil)
	assert.False(t, ok)

	empty := ""
	ok, _ = h.VerifyTimingSafe("pw", &empty)
	assert.False(t, ok)

	encoded, err := h.Hash("pw")
	require.NoError(t, err)
	ok, _ = h.VerifyTimingSafe("pw", &encoded)
	assert.True(t, ok)
}
