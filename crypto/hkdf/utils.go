package hkdf

import (
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"

	"e2ee-session/configs"
	"e2ee-session/crypto"
)

// New64BytesFromSecret derives 64 bytes of key material from a master secret,
// typically split into an initial root key and chain key.
func New64BytesFromSecret(secret []byte) ([]byte, error) {
	hkdfReader := hkdf.New(crypto.DefaultHashFunc, secret, nil, configs.HKDFInfo)

	key := make([]byte, 64)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// KDF fills buffer with HKDF output keyed by keyMaterial; used by the
// ratchet's root-key and message-key derivations.
func KDF(hash func() hash.Hash, keyMaterial []byte, salt []byte, info []byte, buffer []byte) (int, error) {
	hkdfReader := hkdf.New(hash, keyMaterial, salt, info)
	return io.ReadFull(hkdfReader, buffer)
}
