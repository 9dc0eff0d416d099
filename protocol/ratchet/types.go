package ratchet

import (
	"encoding/json"

	"e2ee-session/crypto/key_ed25519"
)

type (
	MsgIndex   uint32
	RootKey    [32]byte
	MessageKey [32]byte
)

// ChainKey is one link of a sending or receiving KDF chain. Advancing it is
// single-use: a link must never derive more than one message key.
type ChainKey struct {
	Key   [32]byte `json:"key"`
	Index MsgIndex `json:"index"`
}

// MessageKeys is the expanded per-message material used to seal or open a
// single message.
type MessageKeys struct {
	CipherKey [32]byte
	MacKey    [32]byte
	IV        [16]byte
	Counter   MsgIndex
}

// Header travels with every ciphertext and carries what the receiver needs
// to locate or create the right receiving chain.
type Header struct {
	RatchetPub key_ed25519.PublicKey `json:"ratchet_pub"`
	// Pn is the number of messages in the previous sending chain
	Pn MsgIndex `json:"pn"`
	// N is the message number within the current chain
	N MsgIndex `json:"n"`
}

func UnmarshalHeader(data []byte) (*Header, error) {
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (h *Header) Marshal() ([]byte, error) {
	return json.Marshal(h)
}

func (h *Header) Equals(other *Header) bool {
	if h == nil || other == nil {
		return false
	}
	return h.RatchetPub.Equals(other.RatchetPub) && h.Pn == other.Pn && h.N == other.N
}
