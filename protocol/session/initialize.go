package session

import (
	"bytes"
	"time"

	"e2ee-session/crypto"
	"e2ee-session/crypto/dh25519"
	"e2ee-session/crypto/key_ed25519"
	"e2ee-session/protocol/ratchet"
)

// https://signal.org/docs/specifications/x3dh/
// Terminology:
// - Alice: initiator
// - Bob: responder
//
// The DH operand order below is a protocol-fixed contract; both sides must
// mix identity, base and prekey material in complementary order or they
// derive different secrets.

// discontinuityBytes prefix the master secret so it can never collide with
// secrets of older protocol versions.
var discontinuityBytes = bytes.Repeat([]byte{0xFF}, crypto.KeySize)

// AliceParameters are the initiator-side inputs to session establishment.
type AliceParameters struct {
	OurIdentityKeyPair *key_ed25519.Pair
	OurBaseKeyPair     *key_ed25519.Pair

	TheirIdentityKey   key_ed25519.PublicKey
	TheirSignedPreKey  key_ed25519.PublicKey
	TheirRatchetKey    key_ed25519.PublicKey
	TheirOneTimePreKey key_ed25519.PublicKey // optional

	LocalRegistrationID  uint32
	RemoteRegistrationID uint32
}

// BobParameters are the responder-side inputs to session establishment.
type BobParameters struct {
	OurIdentityKeyPair  *key_ed25519.Pair
	OurSignedPreKeyPair *key_ed25519.Pair
	// OurRatchetKeyPair is the pair the responder ratchets with; by
	// convention the signed prekey pair unless a separate ephemeral was
	// published.
	OurRatchetKeyPair    *key_ed25519.Pair
	OurOneTimePreKeyPair *key_ed25519.Pair // optional

	TheirIdentityKey key_ed25519.PublicKey
	TheirBaseKey     key_ed25519.PublicKey

	LocalRegistrationID  uint32
	RemoteRegistrationID uint32
}

// InitializeAliceSession runs the initiator side of the asynchronous key
// agreement and returns a state that can send immediately: the master
// secret seeds the root key, and one DH ratchet half-step under a fresh
// ratchet pair populates the sending chain.
func InitializeAliceSession(params *AliceParameters, now time.Time) (*SessionState, error) {
	if params.OurIdentityKeyPair.IsEmpty() || params.OurBaseKeyPair.IsEmpty() ||
		len(params.TheirIdentityKey) == 0 || len(params.TheirSignedPreKey) == 0 ||
		len(params.TheirRatchetKey) == 0 {
		return nil, ErrInvalidKey
	}

	dh1, err := dh25519.GetSecret(params.OurIdentityKeyPair.Priv, params.TheirSignedPreKey)
	if err != nil {
		return nil, err
	}
	dh2, err := dh25519.GetSecret(params.OurBaseKeyPair.Priv, params.TheirIdentityKey)
	if err != nil {
		return nil, err
	}
	dh3, err := dh25519.GetSecret(params.OurBaseKeyPair.Priv, params.TheirSignedPreKey)
	if err != nil {
		return nil, err
	}

	secret := make([]byte, 0, 5*crypto.KeySize)
	secret = append(secret, discontinuityBytes...)
	secret = append(secret, dh1...)
	secret = append(secret, dh2...)
	secret = append(secret, dh3...)
	if len(params.TheirOneTimePreKey) != 0 {
		dh4, err := dh25519.GetSecret(params.OurBaseKeyPair.Priv, params.TheirOneTimePreKey)
		if err != nil {
			return nil, err
		}
		secret = append(secret, dh4...)
		wipe(dh4)
	}

	rootKey, chainKey, err := ratchet.DeriveInitialKeys(secret)
	wipe(secret, dh1, dh2, dh3)
	if err != nil {
		return nil, err
	}

	sendingPair, err := key_ed25519.NewPair()
	if err != nil {
		return nil, err
	}
	newRoot, sendChainKey, err := rootKey.CreateChain(params.TheirRatchetKey, sendingPair)
	rootKey.Zero()
	if err != nil {
		return nil, err
	}

	state := NewSessionState()
	state.LocalIdentityKey = params.OurIdentityKeyPair.Pub
	state.RemoteIdentityKey = params.TheirIdentityKey
	state.LocalRegistrationID = params.LocalRegistrationID
	state.RemoteRegistrationID = params.RemoteRegistrationID
	state.RootKey = newRoot
	state.RatchetKeyPair = *sendingPair
	state.SenderChain = &SenderChain{ChainKey: sendChainKey}
	state.AddReceiverChain(&ReceiverChain{
		RatchetKey: append(key_ed25519.PublicKey(nil), params.TheirRatchetKey...),
		ChainKey:   chainKey,
	})
	state.AliceBaseKey = params.OurBaseKeyPair.Pub
	state.CreatedAt = now.UnixMilli()
	return state, nil
}

// InitializeBobSession runs the responder side with the complementary DH
// order. The returned state has no sender chain: the responder cannot send
// until the initiator's first ratchet key arrives and triggers a DH ratchet
// step.
func InitializeBobSession(params *BobParameters, now time.Time) (*SessionState, error) {
	if params.OurIdentityKeyPair.IsEmpty() || params.OurSignedPreKeyPair.IsEmpty() ||
		params.OurRatchetKeyPair.IsEmpty() ||
		len(params.TheirIdentityKey) == 0 || len(params.TheirBaseKey) == 0 {
		return nil, ErrInvalidKey
	}

	dh1, err := dh25519.GetSecret(params.OurSignedPreKeyPair.Priv, params.TheirIdentityKey)
	if err != nil {
		return nil, err
	}
	dh2, err := dh25519.GetSecret(params.OurIdentityKeyPair.Priv, params.TheirBaseKey)
	if err != nil {
		return nil, err
	}
	dh3, err := dh25519.GetSecret(params.OurSignedPreKeyPair.Priv, params.TheirBaseKey)
	if err != nil {
		return nil, err
	}

	secret := make([]byte, 0, 5*crypto.KeySize)
	secret = append(secret, discontinuityBytes...)
	secret = append(secret, dh1...)
	secret = append(secret, dh2...)
	secret = append(secret, dh3...)
	if !params.OurOneTimePreKeyPair.IsEmpty() {
		dh4, err := dh25519.GetSecret(params.OurOneTimePreKeyPair.Priv, params.TheirBaseKey)
		if err != nil {
			return nil, err
		}
		secret = append(secret, dh4...)
		wipe(dh4)
	}

	rootKey, chainKey, err := ratchet.DeriveInitialKeys(secret)
	wipe(secret, dh1, dh2, dh3)
	if err != nil {
		return nil, err
	}
	// The initial chain key pairs with a sending chain the responder never
	// gets: sending waits for the first inbound ratchet step.
	chainKey.Zero()

	state := NewSessionState()
	state.LocalIdentityKey = params.OurIdentityKeyPair.Pub
	state.RemoteIdentityKey = params.TheirIdentityKey
	state.LocalRegistrationID = params.LocalRegistrationID
	state.RemoteRegistrationID = params.RemoteRegistrationID
	state.RootKey = rootKey
	state.RatchetKeyPair = key_ed25519.Pair{
		Priv: append(key_ed25519.PrivateKey(nil), params.OurRatchetKeyPair.Priv...),
		Pub:  append(key_ed25519.PublicKey(nil), params.OurRatchetKeyPair.Pub...),
	}
	state.AliceBaseKey = append(key_ed25519.PublicKey(nil), params.TheirBaseKey...)
	state.CreatedAt = now.UnixMilli()
	return state, nil
}

func wipe(buffers ...[]byte) {
	for _, b := range buffers {
		for i := range b {
			b[i] = 0
		}
	}
}
