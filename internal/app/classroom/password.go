// internal/app/classroom/password.go

package classroom

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// joinSecretLen is the length of a generated join secret in base32
// characters. 20 characters encode 100 bits of randomness, far past the
// point where the unique-index retry in the callers could ever loop.
const joinSecretLen = 20

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newJoinSecret returns a fresh classroom join secret. Secrets are uppercase
// base32 so they survive being read aloud and typed into a phone.
func newJoinSecret() (string, error) {
	buf := make([]byte, 13) // 13 bytes -> 21 base32 chars, trimmed to 20
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("classroom: generate join secret: %w", err)
	}
	return secretEncoding.EncodeToString(buf)[:joinSecretLen], nil
}
