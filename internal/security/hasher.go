// Package security contains the credential hashing used for user passwords.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	// Hash returns a salted one-way hash of plain. Two calls with the same
	// input produce different outputs.
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. Malformed hashes yield false.
	Verify(hash, plain string) bool
	// NeedsRehash reports whether hash was produced with weaker parameters
	// than the hasher currently uses.
	NeedsRehash(hash string) bool
}

var errInvalidHash = errors.New("invalid hash format")

// Upper bounds on parameters read back from a stored hash.
const (
	maxArgonMemory      = 1 << 20 // KiB, 1 GiB
	maxArgonIterations  = 10
	maxArgonParallelism = 16
	maxArgonSaltLength  = 64
	maxArgonKeyLength   = 64
)

// ArgonHash produces PHC-style argon2id hashes.
type ArgonHash struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// NewArgonHash returns a hasher with the recommended interactive-login cost.
func NewArgonHash() *ArgonHash {
	return &ArgonHash{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (a *ArgonHash) Hash(plain string) (string, error) {
	salt, err := genRandBytes(a.SaltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(plain), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Iterations, a.Parallelism, b64Salt, b64Hash), nil
}

func (a *ArgonHash) Verify(hash, plain string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}

	p, err := decodeArgon(hash)
	if err != nil {
		return false
	}
	calc := argon2.IDKey([]byte(plain), p.salt, p.iterations, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, calc) == 1
}

func (a *ArgonHash) NeedsRehash(hash string) bool {
	if isBcrypt(hash) {
		return true
	}
	p, err := decodeArgon(hash)
	if err != nil {
		return true
	}
	return p.memory < a.Memory || p.iterations < a.Iterations || uint32(len(p.key)) < a.KeyLength
}

type argonParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// decodeArgon parses $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>.
func decodeArgon(encoded string) (*argonParams, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, errInvalidHash
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	p := &argonParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, errInvalidHash
	}
	if p.memory == 0 || p.iterations == 0 || p.parallelism == 0 {
		return nil, errInvalidHash
	}
	if p.memory > maxArgonMemory || p.iterations > maxArgonIterations || p.parallelism > maxArgonParallelism {
		return nil, errInvalidHash
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) > maxArgonSaltLength {
		return nil, errInvalidHash
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 || len(p.key) > maxArgonKeyLength {
		return nil, errInvalidHash
	}
	return p, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

func genRandBytes(n uint32) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
