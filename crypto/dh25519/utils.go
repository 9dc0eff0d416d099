package dh25519

import (
	"errors"

	"e2ee-session/crypto/key_ed25519"
)

var (
	ErrInvalid = errors.New("invalid input")
)

// GetSecret computes the shared Diffie-Hellman secret between a private key
// and a peer public key. The output is a 32-byte point encoding.
func GetSecret(privKey key_ed25519.PrivateKey, pubKey key_ed25519.PublicKey) ([]byte, error) {
	if len(privKey) == 0 || len(pubKey) == 0 {
		return nil, ErrInvalid
	}
	privScalar, err := privKey.ToScalar()
	if err != nil {
		return nil, err
	}
	pubPoint, err := pubKey.ToPoint()
	if err != nil {
		return nil, err
	}
	secretPoint := key_ed25519.Suite.Point().Mul(privScalar, pubPoint)
	return secretPoint.MarshalBinary()
}
