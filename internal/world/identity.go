package world

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Identity is the opaque primary key of a player. The transport derives it
// from the client's credential; the credential itself is never stored.
type Identity [32]byte

// IdentityFromToken hashes a client token into its identity.
func IdentityFromToken(token string) Identity {
	return Identity(blake2b.Sum256([]byte(token)))
}

// ParseIdentity decodes the hex form produced by Hex.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("parse identity: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("parse identity: want %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (id Identity) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id Identity) String() string {
	return id.Hex()
}

// Short is the first eight hex digits, used in log lines.
func (id Identity) Short() string {
	return id.Hex()[:8]
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id == Identity{}
}
