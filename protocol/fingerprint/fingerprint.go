package fingerprint

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"e2ee-session/crypto/key_ed25519"
)

const iterations = 5200

// Fingerprint derives 30 displayable digits from an identity key and a user
// identifier by iterated hashing, mimicking what the Signal app shows in
// its safety-number screen.
func Fingerprint(pubKey key_ed25519.PublicKey, userIdentifier []byte) (*[30]int, error) {
	digest := make([]byte, 0, len(pubKey)+len(userIdentifier))
	digest = append(digest, pubKey...)
	digest = append(digest, userIdentifier...)

	hash := sha512.New()
	for i := 0; i < iterations; i++ {
		if _, err := hash.Write(digest); err != nil {
			return nil, err
		}
		digest = hash.Sum(nil)
		hash.Reset()
	}

	var result [30]byte
	copy(result[:], digest[:30])

	var finalResult [30]int
	for i := 0; i < 6; i++ {
		chunk := result[i*5 : (i+1)*5]
		num := binary.BigEndian.Uint64(append([]byte{0, 0, 0}, chunk...)) % 100000
		for j := 4; j >= 0; j-- {
			finalResult[i*5+j] = int(num % 10)
			num /= 10
		}
	}

	return &finalResult, nil
}

// DisplayText renders both parties' fingerprints as one comparable string,
// lower digits first so both sides render the same text.
func DisplayText(local, remote *[30]int) string {
	a, b := digits(local), digits(remote)
	if b < a {
		a, b = b, a
	}
	return a + b
}

func digits(fp *[30]int) string {
	var sb strings.Builder
	for i, d := range fp {
		if i > 0 && i%5 == 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", d)
	}
	return sb.String()
}
