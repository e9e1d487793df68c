// Package signature provides helper functions for handling the ledger
// hashing and signature needs.
package signature

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// ValidationError is returned when signature material can't be decoded into
// bytes. It is never treated as a valid signature.
type ValidationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s encoding: %s", ve.Field, ve.Err)
}

// Unwrap returns the underlying decode error.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// =============================================================================

// Hash returns the upper case hex encoded sha256 of the input.
func Hash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%X", hash[:])
}

// Sign uses the specified private key to sign the hash string. The signature
// is returned base64 encoded.
func Sign(privateKey ed25519.PrivateKey, hash string) string {
	sig := ed25519.Sign(privateKey, []byte(hash))
	return base64.StdEncoding.EncodeToString(sig)
}

// Verify checks the signature was produced over the hash by the private key
// behind the address. Malformed keys or signatures of the wrong size verify
// as false. Input that can't be base64 decoded is a ValidationError.
func Verify(address string, hash string, sig string) (bool, error) {
	publicKey, err := base64.StdEncoding.DecodeString(address)
	if err != nil {
		return false, &ValidationError{Field: "address", Err: err}
	}

	sigBytes, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return false, &ValidationError{Field: "signature", Err: err}
	}

	if len(publicKey) != ed25519.PublicKeySize || len(sigBytes) != ed25519.SignatureSize {
		return false, nil
	}

	return ed25519.Verify(ed25519.PublicKey(publicKey), []byte(hash), sigBytes), nil
}

// Address converts the public key into the address used on the ledger.
func Address(publicKey ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(publicKey)
}

// PublicKey converts an address back into the public key it encodes.
func PublicKey(address string) (ed25519.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(address)
	if err != nil {
		return nil, &ValidationError{Field: "address", Err: err}
	}

	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address decodes to %d bytes, exp %d", len(b), ed25519.PublicKeySize)
	}

	return ed25519.PublicKey(b), nil
}
