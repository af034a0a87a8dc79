package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"
)

// alphabet is the 36-symbol uniform alphabet tokens are drawn from.
// Chosen deliberately over a Base58-like set: no characters are excluded
// for visual similarity, matching the strict mode spec.md §4.1 requires.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	prefixLen = 4
	coreLen   = 8
	saltLen   = 16
)

// Pattern is the external wire format every full token string must match.
var Pattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{8}$`)

// Plaintext is the in-memory-only representation of a minted token. It must
// never be persisted or logged.
type Plaintext struct {
	Prefix string
	Core   string
}

// String renders the PREFIX-CORE wire format.
func (p Plaintext) String() string {
	return p.Prefix + "-" + p.Core
}

// DrawPlaintext draws a fresh, uniformly random prefix and core using
// rejection sampling against a CSPRNG byte source. Modulo-biased folding is
// deliberately avoided: a byte is only accepted if it falls within the
// largest multiple of len(alphabet) that fits in a byte, otherwise it is
// redrawn.
func DrawPlaintext() (Plaintext, error) {
	prefix, err := drawSymbols(prefixLen)
	if err != nil {
		return Plaintext{}, fmt.Errorf("draw prefix: %w", err)
	}

	core, err := drawSymbols(coreLen)
	if err != nil {
		return Plaintext{}, fmt.Errorf("draw core: %w", err)
	}

	return Plaintext{Prefix: prefix, Core: core}, nil
}

func drawSymbols(n int) (string, error) {
	const alphabetLen = byte(len(alphabet))
	// Largest multiple of alphabetLen that fits in a byte; bytes at or above
	// it are rejected to avoid modulo bias.
	limit := byte(256 - (256 % int(alphabetLen)))

	var sb strings.Builder
	sb.Grow(n)

	buf := make([]byte, 1)

	for sb.Len() < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		b := buf[0]
		if b >= limit {
			continue
		}

		sb.WriteByte(alphabet[b%alphabetLen])
	}

	return sb.String(), nil
}

// DrawSalt draws a fresh 16-byte per-token salt.
func DrawSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("draw salt: %w", err)
	}

	return salt, nil
}

// Hash computes H(plaintext, salt) = SHA256(pepper ‖ plaintext ‖ salt).
// pepper is the process-wide secret read once at boot from configuration.
func Hash(pepper string, plaintext string, salt []byte) []byte {
	h := sha256.New()
	h.Write([]byte(pepper))
	h.Write([]byte(plaintext))
	h.Write(salt)

	return h.Sum(nil)
}

// Verify compares candidateHash against H(plaintext, salt) in constant time,
// to prevent a timing side-channel from leaking how many leading hash bytes
// matched.
func Verify(pepper, plaintext string, salt, candidateHash []byte) bool {
	computed := Hash(pepper, plaintext, salt)
	return subtle.ConstantTimeCompare(computed, candidateHash) == 1
}

// ParseFull splits a wire-format token string into its prefix and core, or
// reports a malformed token. No DB access is required to reach a verdict.
func ParseFull(full string) (prefix, core string, ok bool) {
	if !Pattern.MatchString(full) {
		return "", "", false
	}

	parts := strings.SplitN(full, "-", 2)

	return parts[0], parts[1], true
}
