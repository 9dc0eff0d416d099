package ratchet

import (
	"e2ee-session/configs"
	"e2ee-session/crypto"
	"e2ee-session/crypto/hkdf"
	"e2ee-session/crypto/hmac"
)

// Seeds per https://signal.org/docs/specifications/doubleratchet/#recommended-cryptographic-algorithms
const (
	messageKeySeed = 0x01
	chainKeySeed   = 0x02
)

// Advance performs one symmetric-key ratchet step, returning the message key
// for the current index and the next chain key. The function is one-way: the
// next chain key cannot be inverted back to this one.
func (ck ChainKey) Advance() (ChainKey, MessageKey, error) {
	mk := hmac.Hash(crypto.DefaultHashFunc, ck.Key[:], []byte{messageKeySeed})
	next := hmac.Hash(crypto.DefaultHashFunc, ck.Key[:], []byte{chainKeySeed})
	if len(mk) != crypto.KeySize || len(next) != crypto.KeySize {
		return ChainKey{}, MessageKey{}, ErrInvalidSecretLength
	}

	var nextCk ChainKey
	copy(nextCk.Key[:], next)
	nextCk.Index = ck.Index + 1

	var msgKey MessageKey
	copy(msgKey[:], mk)
	return nextCk, msgKey, nil
}

func (ck *ChainKey) Zero() {
	for i := range ck.Key {
		ck.Key[i] = 0
	}
}

// Expand stretches the message-key seed into cipher key, MAC key and IV for
// a single message.
func (mk MessageKey) Expand(counter MsgIndex) (*MessageKeys, error) {
	buffer := make([]byte, 80)
	if n, err := hkdf.KDF(crypto.DefaultHashFunc, mk[:], nil, configs.HKDFSaltMessageKeys, buffer); err != nil {
		return nil, err
	} else if n != 80 {
		return nil, ErrInvalidSecretLength
	}

	keys := &MessageKeys{Counter: counter}
	copy(keys.CipherKey[:], buffer[:32])
	copy(keys.MacKey[:], buffer[32:64])
	copy(keys.IV[:], buffer[64:])
	return keys, nil
}

func (mk *MessageKey) Zero() {
	for i := range mk {
		mk[i] = 0
	}
}
