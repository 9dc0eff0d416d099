package signer_schnorr

import (
	"go.dedis.ch/kyber/v4/sign/schnorr"

	"e2ee-session/crypto/key_ed25519"
)

// Sign signs msg with the private key using the Schnorr scheme over the
// edwards25519 suite. Used to produce signed-prekey signatures.
func Sign(privKey key_ed25519.PrivateKey, msg []byte) ([]byte, error) {
	privScalar, err := privKey.ToScalar()
	if err != nil {
		return nil, err
	}
	return schnorr.Sign(key_ed25519.Suite, privScalar, msg)
}

// Verify checks sig over msg against the public key.
func Verify(pubKey key_ed25519.PublicKey, msg []byte, sig []byte) error {
	pubPoint, err := pubKey.ToPoint()
	if err != nil {
		return err
	}
	return schnorr.Verify(key_ed25519.Suite, pubPoint, msg, sig)
}
