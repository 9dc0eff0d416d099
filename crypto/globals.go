package crypto

import "crypto/sha256"

var (
	DefaultHashFunc = sha256.New
)

const (
	KeySize        = 32
	HMACSHA256Size = 32
	IVSize         = 16
)
