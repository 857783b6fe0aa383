// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/carterperez-dev/postgate/internal/config"
)

const (
	defaultArgonTime    = 1
	defaultArgonMemory  = 64 * 1024
	defaultArgonThreads = 4
	argonKeyLen         = 32
	saltLength          = 16
)

// Hasher is the credential store: argon2id with per-hash random salt,
// encoded in the PHC string format. It holds no locks, so concurrent
// hashing never serialises unrelated requests.
type Hasher struct {
	params    argonParams
	dummyHash string
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

func NewHasher(cfg config.SecurityConfig) (*Hasher, error) {
	params := argonParams{
		memory:  cfg.ArgonMemoryKiB,
		time:    cfg.ArgonIterations,
		threads: cfg.ArgonParallelism,
		keyLen:  argonKeyLen,
	}
	if params.memory == 0 {
		params.memory = defaultArgonMemory
	}
	if params.time == 0 {
		params.time = defaultArgonTime
	}
	if params.threads == 0 {
		params.threads = defaultArgonThreads
	}

	h := &Hasher{params: params}

	dummy, err := h.Hash("dummy_password_for_timing_attack_prevention")
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	h.dummyHash = dummy

	return h, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.time,
		h.params.memory,
		h.params.threads,
		h.params.keyLen,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.time,
		h.params.threads,
		b64Salt,
		b64Hash,
	)

	return encoded, nil
}

// Verify reports whether password matches encodedHash. A malformed hash
// is a mismatch, never an error.
func (h *Hasher) Verify(password, encodedHash string) bool {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false
	}

	otherHash := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.threads,
		params.keyLen,
	)

	return subtle.ConstantTimeCompare(hash, otherHash) == 1
}

// VerifyWithRehash verifies password and, when the stored hash was made
// with other cost parameters, returns a fresh hash to persist.
func (h *Hasher) VerifyWithRehash(password, encodedHash string) (bool, string) {
	if !h.Verify(password, encodedHash) {
		return false, ""
	}

	if !h.needsRehash(encodedHash) {
		return true, ""
	}

	newHash, err := h.Hash(password)
	if err != nil {
		return true, ""
	}
	return true, newHash
}

// VerifyTimingSafe burns the same work as a real verification when no
// hash is known, so unknown emails and wrong passwords cost the same.
func (h *Hasher) VerifyTimingSafe(password string, encodedHash *string) (bool, string) {
	if encodedHash == nil || *encodedHash == "" {
		h.Verify(password, h.dummyHash)
		return false, ""
	}

	return h.VerifyWithRehash(password, *encodedHash)
}

func (h *Hasher) needsRehash(encodedHash string) bool {
	params, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}

	return params.memory != h.params.memory ||
		params.time != h.params.time ||
		params.threads != h.params.threads ||
		params.keyLen != h.params.keyLen
}

func decodeHash(encodedHash string) (*argonParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, fmt.Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	_, err := fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}

	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params := &argonParams{}
	_, err = fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	if params.time == 0 || params.threads == 0 {
		return nil, nil, nil, fmt.Errorf("invalid params: zero cost")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	if len(hash) == 0 {
		return nil, nil, nil, fmt.Errorf("decode hash: empty")
	}

	//nolint:gosec // G115: hash length is always small (32 bytes for Argon2id)
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}
