package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid voter token format")

// NewID returns a fresh UUID string, used for poll, option, and vote
// identifiers. IDs are opaque and never reused.
func NewID() string {
	return uuid.NewString()
}

// Fingerprint creates a one-way digest of a voter's network address.
// The salt prevents rainbow table reversal; the raw address is never
// stored or transmitted.
func Fingerprint(addr, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(addr))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}

// ValidateVoterToken format-checks a client-supplied token. Tokens are
// opaque identifiers minted by the client; the server only requires
// that they parse as a well-formed UUID.
func ValidateVoterToken(token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}
