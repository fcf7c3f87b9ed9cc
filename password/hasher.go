// Package password provides password strength validation and tagged-hash
// verification with an upgrade path between algorithms.
//
// Every stored hash carries its algorithm tag in the form "{alg}encoded",
// so hashes produced under an old algorithm stay verifiable after the
// preferred algorithm changes. Verification reports when a hash should be
// re-produced under the current algorithm; the caller persists the upgrade.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownAlgorithm is returned when a stored hash carries a tag outside
// the supported set. This is a data problem, not a failed match.
var ErrUnknownAlgorithm = errors.New("password: unknown hash algorithm tag")

// Hasher produces and verifies tagged password hashes.
type Hasher struct {
	cfg Config
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) (*Hasher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	return &Hasher{cfg: cfg}, nil
}

// Hash produces a tagged hash of the password under the current preferred
// algorithm (argon2id).
func (h *Hasher) Hash(password string) (string, error) {
	salt, err := generateRandomBytes(16)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.cfg.Argon2Time, h.cfg.Argon2Memory, h.cfg.Argon2Threads, 32)

	// PHC encoding inside the algorithm tag:
	// {argon2id}$argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$HASH
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Argon2Memory, h.cfg.Argon2Time, h.cfg.Argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return FormatTagged(CurrentAlgorithm, encoded), nil
}

// Verify dispatches to the verifier matching the stored tag.
// matched reports whether the password matches; shouldUpgrade is true when
// the match succeeded against a non-preferred algorithm, signaling the
// caller to re-hash with Hash and persist the new value.
func (h *Hasher) Verify(password, taggedHash string) (matched bool, shouldUpgrade bool, err error) {
	alg, encoded, err := ParseTagged(taggedHash)
	if err != nil {
		return false, false, err
	}

	switch alg {
	case AlgorithmArgon2id:
		matched, err = verifyArgon2id(password, encoded)
	case AlgorithmBcrypt:
		matched, err = verifyBcrypt(password, encoded)
	case AlgorithmSHA256:
		matched, err = verifySHA256(password, encoded)
	default:
		return false, false, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	if err != nil {
		return false, false, err
	}
	return matched, matched && alg != CurrentAlgorithm, nil
}

// FormatTagged joins an algorithm tag and its encoded hash.
func FormatTagged(alg Algorithm, encoded string) string {
	return "{" + string(alg) + "}" + encoded
}

// ParseTagged splits a tagged hash into its algorithm and encoded payload.
func ParseTagged(taggedHash string) (Algorithm, string, error) {
	if !strings.HasPrefix(taggedHash, "{") {
		return "", "", fmt.Errorf("password: hash has no algorithm tag")
	}
	end := strings.Index(taggedHash, "}")
	if end < 0 {
		return "", "", fmt.Errorf("password: unterminated algorithm tag")
	}
	alg := Algorithm(taggedHash[1:end])
	switch alg {
	case AlgorithmArgon2id, AlgorithmBcrypt, AlgorithmSHA256:
		return alg, taggedHash[end+1:], nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// AlgorithmOf returns the algorithm tag of a stored hash.
func AlgorithmOf(taggedHash string) (Algorithm, error) {
	alg, _, err := ParseTagged(taggedHash)
	return alg, err
}

func verifyArgon2id(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("password: invalid argon2id hash format")
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("password: parse argon2id params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("password: decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("password: decode hash: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func verifyBcrypt(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("password: bcrypt verify: %w", err)
}

// verifySHA256 checks the legacy "salthex:digesthex" format where
// digest = sha256(salt || password).
func verifySHA256(password, encoded string) (bool, error) {
	saltHex, digestHex, ok := strings.Cut(encoded, ":")
	if !ok {
		return false, fmt.Errorf("password: invalid sha256 hash format")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("password: decode salt: %w", err)
	}
	expected, err := hex.DecodeString(digestHex)
	if err != nil {
		return false, fmt.Errorf("password: decode digest: %w", err)
	}

	sum := sha256.Sum256(append(salt, []byte(password)...))
	return subtle.ConstantTimeCompare(sum[:], expected) == 1, nil
}

// LegacyBcryptHash produces a bcrypt tagged hash. It exists for migration
// fixtures and tests; production code always hashes with Hash.
func (h *Hasher) LegacyBcryptHash(password string) (string, error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(password), h.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("password: bcrypt hash: %w", err)
	}
	return FormatTagged(AlgorithmBcrypt, string(raw)), nil
}

// LegacySHA256Hash produces a legacy salted sha256 tagged hash. Migration
// fixtures and tests only.
func LegacySHA256Hash(password string) (string, error) {
	salt, err := generateRandomBytes(8)
	if err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}
	sum := sha256.Sum256(append(salt, []byte(password)...))
	encoded := hex.EncodeToString(salt) + ":" + hex.EncodeToString(sum[:])
	return FormatTagged(AlgorithmSHA256, encoded), nil
}

// generateRandomBytes returns cryptographically secure random bytes.
func generateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
