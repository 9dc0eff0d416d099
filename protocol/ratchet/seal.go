package ratchet

import (
	hmac2 "crypto/hmac"

	"e2ee-session/crypto"
	"e2ee-session/crypto/aes256"
	"e2ee-session/crypto/hmac"
)

// Seal encrypts plaintext under the expanded message keys and appends an
// HMAC tag computed over associatedData followed by the ciphertext.
func Seal(keys *MessageKeys, plaintext []byte, associatedData []byte) ([]byte, error) {
	ciphertext, err := aes256.Encrypt(plaintext, keys.CipherKey, keys.IV)
	if err != nil {
		return nil, err
	}

	tag := hmac.Hash(crypto.DefaultHashFunc, keys.MacKey[:], concat(associatedData, ciphertext))
	return append(ciphertext, tag...), nil
}

// Open verifies the tag and decrypts. The tag is checked before any
// decryption happens so a forged message never reaches the cipher.
func Open(keys *MessageKeys, sealed []byte, associatedData []byte) ([]byte, error) {
	if len(sealed) < crypto.HMACSHA256Size {
		return nil, ErrInvalidCiphertext
	}
	split := len(sealed) - crypto.HMACSHA256Size
	ciphertext, tag := sealed[:split], sealed[split:]

	expected := hmac.Hash(crypto.DefaultHashFunc, keys.MacKey[:], concat(associatedData, ciphertext))
	if !hmac2.Equal(tag, expected) {
		return nil, ErrInvalidTag
	}

	return aes256.Decrypt(ciphertext, keys.CipherKey, keys.IV)
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
