package key_ed25519

import (
	"crypto/subtle"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/suites"
)

type (
	// PrivateKey is a 32-byte private key (an edwards25519 scalar)
	PrivateKey []byte
	// PublicKey is a 32-byte public key (an edwards25519 point)
	PublicKey []byte
	Pair      struct {
		Priv PrivateKey `json:"priv"`
		Pub  PublicKey  `json:"pub"`
	}
)

var (
	Suite = suites.MustFind("Ed25519") // Use the edwards25519-curve
)

func New() (PrivateKey, error) {
	privK := Suite.Scalar().Pick(Suite.RandomStream())
	return privK.MarshalBinary()
}

// NewPair generates a fresh key pair, e.g. for one DH ratchet step.
func NewPair() (*Pair, error) {
	priv, err := New()
	if err != nil {
		return nil, err
	}
	pub, err := priv.Public()
	if err != nil {
		return nil, err
	}
	return &Pair{Priv: priv, Pub: pub}, nil
}

func (privB PrivateKey) Public() (PublicKey, error) {
	privK, err := privB.ToScalar()
	if err != nil {
		return nil, err
	}
	pubK := Suite.Point().Mul(privK, nil)
	return pubK.MarshalBinary()
}

func (privB PrivateKey) ToScalar() (kyber.Scalar, error) {
	privK := Suite.Scalar()
	if err := privK.UnmarshalBinary(privB); err != nil {
		return nil, err
	}
	return privK, nil
}

// Zero wipes the scalar bytes. The key is unusable afterwards.
func (privB PrivateKey) Zero() {
	for i := range privB {
		privB[i] = 0
	}
}

func (pubB PublicKey) ToPoint() (kyber.Point, error) {
	pubK := Suite.Point()
	if err := pubK.UnmarshalBinary(pubB); err != nil {
		return nil, err
	}
	return pubK, nil
}

func (pubB PublicKey) Equals(other PublicKey) bool {
	if len(pubB) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(pubB, other) == 1
}

func (p *Pair) Zero() {
	p.Priv.Zero()
}

func (p *Pair) IsEmpty() bool {
	return p == nil || len(p.Priv) == 0
}
