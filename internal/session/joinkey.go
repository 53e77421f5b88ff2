package session

import (
	"crypto/rand"
	"math/big"
)

const (
	joinKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	joinKeyLength   = 8
)

// generateJoinKey draws 8 symbols from the 62-letter alphanumeric alphabet
// using crypto/rand (~2^47 keyspace).
func generateJoinKey() (string, error) {
	max := big.NewInt(int64(len(joinKeyAlphabet)))
	buf := make([]byte, joinKeyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = joinKeyAlphabet[n.Int64()]
	}
	return string(buf), nil
}
