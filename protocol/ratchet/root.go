package ratchet

import (
	"e2ee-session/configs"
	"e2ee-session/crypto"
	"e2ee-session/crypto/dh25519"
	"e2ee-session/crypto/hkdf"
	"e2ee-session/crypto/key_ed25519"
)

// CreateChain runs one half of a DH ratchet step: it mixes the DH output of
// our ratchet key and the peer's ratchet key into the root key and returns
// the next root key plus a fresh chain key at index 0.
func (rk RootKey) CreateChain(theirRatchetKey key_ed25519.PublicKey, ourRatchetKey *key_ed25519.Pair) (RootKey, ChainKey, error) {
	dhOut, err := dh25519.GetSecret(ourRatchetKey.Priv, theirRatchetKey)
	if err != nil {
		return RootKey{}, ChainKey{}, err
	}

	buffer := make([]byte, 64)
	if n, err := hkdf.KDF(crypto.DefaultHashFunc, dhOut, rk[:], configs.HKDFSaltRootKey, buffer); err != nil {
		return RootKey{}, ChainKey{}, err
	} else if n != 64 {
		return RootKey{}, ChainKey{}, ErrInvalidSecretLength
	}

	var newRoot RootKey
	copy(newRoot[:], buffer[:32])

	var chain ChainKey
	copy(chain.Key[:], buffer[32:])
	return newRoot, chain, nil
}

func (rk *RootKey) Zero() {
	for i := range rk {
		rk[i] = 0
	}
}

// DeriveInitialKeys turns a key-agreement master secret into the initial
// root key and chain key of a session.
func DeriveInitialKeys(secret []byte) (RootKey, ChainKey, error) {
	derived, err := hkdf.New64BytesFromSecret(secret)
	if err != nil {
		return RootKey{}, ChainKey{}, err
	}
	if len(derived) != 64 {
		return RootKey{}, ChainKey{}, ErrInvalidSecretLength
	}

	var root RootKey
	copy(root[:], derived[:32])

	var chain ChainKey
	copy(chain.Key[:], derived[32:])
	return root, chain, nil
}
