// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"math/big"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandomBase36 returns n cryptographically random characters from [0-9a-z].
func RandomBase36(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base36Alphabet[idx.Int64()]
	}
	return string(out), nil
}
