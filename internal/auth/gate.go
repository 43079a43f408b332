package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassphrase is the reference admin passphrase. Deployments that
// care set ADMIN_PASSPHRASE_HASH instead; this constant exists so the app
// works out of the box, exactly as shared-secret gates always have here.
const DefaultPassphrase = "1223445"

// Gate verifies the admin passphrase against a stored bcrypt hash.
type Gate struct {
	hash []byte
}

// NewGate creates a Gate for the given bcrypt hash. An empty hash falls
// back to a hash of DefaultPassphrase, computed once at startup — cost 10
// on a 7-character constant is instant.
func NewGate(passphraseHash string) (*Gate, error) {
	if passphraseHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassphrase), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		return &Gate{hash: h}, nil
	}

	// Validate the configured hash eagerly so a typo in the env var
	// surfaces at startup, not at first login.
	if _, err := bcrypt.Cost([]byte(passphraseHash)); err != nil {
		return nil, errors.New("auth: ADMIN_PASSPHRASE_HASH is not a bcrypt hash")
	}
	return &Gate{hash: []byte(passphraseHash)}, nil
}

// Verify reports whether the passphrase matches.
// bcrypt.CompareHashAndPassword is constant-time internally.
func (g *Gate) Verify(passphrase string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(passphrase)) == nil
}
