// Package keys derives the signing keys for a voter from their credentials.
// The same registration id and password always produce the same key, so the
// address is recoverable by anyone holding both.
package keys

import (
	"crypto/ed25519"

	"github.com/ardanlabs/ballot/foundation/blockchain/signature"
)

// seedFill is the byte used for every seed position the credentials don't
// reach. Changing it changes every derived address.
const seedFill = '1'

// Derive builds the private key for the specified credentials. The seed is
// the registration id followed by the password, truncated or padded out to
// the seed size.
func Derive(password string, registrationID string) ed25519.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	comb := []byte(registrationID + password)

	for i := range seed {
		if i < len(comb) {
			seed[i] = comb[i]
			continue
		}
		seed[i] = seedFill
	}

	return ed25519.NewKeyFromSeed(seed)
}

// Address returns the ledger address for the private key.
func Address(privateKey ed25519.PrivateKey) string {
	return signature.Address(privateKey.Public().(ed25519.PublicKey))
}
