package session

import (
	"fmt"

	"e2ee-session/crypto/key_ed25519"
	"e2ee-session/crypto/signer_schnorr"
)

// PreKeyBundle is the public handshake material a responder publishes so
// initiators can establish sessions asynchronously.
type PreKeyBundle struct {
	RegistrationID uint32
	DeviceID       uint32

	IdentityKey     key_ed25519.PublicKey
	SignedPreKey    key_ed25519.PublicKey
	SignedPreKeySig []byte
	OneTimePreKey   key_ed25519.PublicKey // optional
}

// Verify checks the signed prekey's signature against the bundle's identity
// key. Bundles with forged prekeys must never reach the initializer.
func (b *PreKeyBundle) Verify() error {
	if err := signer_schnorr.Verify(b.IdentityKey, b.SignedPreKey, b.SignedPreKeySig); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

// NewAliceParameters verifies a responder bundle and assembles initiator
// parameters from it. The signed prekey doubles as the responder's initial
// ratchet key.
func NewAliceParameters(bundle *PreKeyBundle, ourIdentity, ourBase *key_ed25519.Pair, localRegistrationID uint32) (*AliceParameters, error) {
	if err := bundle.Verify(); err != nil {
		return nil, err
	}
	return &AliceParameters{
		OurIdentityKeyPair:   ourIdentity,
		OurBaseKeyPair:       ourBase,
		TheirIdentityKey:     bundle.IdentityKey,
		TheirSignedPreKey:    bundle.SignedPreKey,
		TheirRatchetKey:      bundle.SignedPreKey,
		TheirOneTimePreKey:   bundle.OneTimePreKey,
		LocalRegistrationID:  localRegistrationID,
		RemoteRegistrationID: bundle.RegistrationID,
	}, nil
}
