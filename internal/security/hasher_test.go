package security

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheap parameters keep the suite fast; the format is identical
func testHasher() *ArgonHash {
	return &ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgonHash_RoundTrip(t *testing.T) {
	h := testHasher()

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, h.Verify(hash, "s3cret"))
	assert.False(t, h.Verify(hash, "S3cret"))
	assert.False(t, h.Verify(hash, ""))
}

func TestArgonHash_SaltedPerCall(t *testing.T) {
	h := testHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify(a, "same"))
	assert.True(t, h.Verify(b, "same"))
}

func TestArgonHash_VerifyUsesEmbeddedParams(t *testing.T) {
	old := testHasher()
	hash, err := old.Hash("pw")
	require.NoError(t, err)

	current := NewArgonHash()
	assert.True(t, current.Verify(hash, "pw"), "a hash made with other params still verifies")
	assert.True(t, current.NeedsRehash(hash))
	assert.False(t, old.NeedsRehash(hash))
}

func TestArgonHash_MalformedHashes(t *testing.T) {
	h := testHasher()
	inputs := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$onlysalt",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify(in, "anything"), "input %q", in)
		})
		assert.True(t, h.NeedsRehash(in), "input %q", in)
	}
}

func TestArgonHash_VerifiesBcrypt(t *testing.T) {
	h := testHasher()
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, h.Verify(string(legacy), "admin"))
	assert.False(t, h.Verify(string(legacy), "guest"))
	assert.True(t, h.NeedsRehash(string(legacy)))
}

func TestArgonHash_RejectsExcessiveCost(t *testing.T) {
	h := testHasher()
	long := base64.RawStdEncoding.EncodeToString(make([]byte, 65))
	inputs := []string{
		"$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1048577,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=4294967295,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=11,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=17$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$" + long + "$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$" + long,
	}
	for _, in := range inputs {
		_, err := decodeArgon(in)
		assert.ErrorIs(t, err, errInvalidHash, "input %q", in)
		assert.False(t, h.Verify(in, "anything"), "input %q", in)
	}

	// the bounds themselves are accepted
	_, err := decodeArgon("$argon2id$v=19$m=1048576,t=10,p=16$c2FsdA$a2V5")
	assert.NoError(t, err)
}
