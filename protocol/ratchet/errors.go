package ratchet

import "errors"

var (
	ErrInvalidSecretLength = errors.New("invalid secret length")
	ErrInvalidTag          = errors.New("invalid tag")
	ErrInvalidCiphertext   = errors.New("ciphertext too short")
)
