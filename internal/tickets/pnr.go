package tickets

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	pnrPrefix  = "VV00"
	pnrCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pnrSuffix  = 5
)

// GeneratePNR builds a booking reference like "VV00A3K9Z". Uniqueness is
// enforced by the database; callers retry on collision.
func GeneratePNR() (string, error) {
	suffix := make([]byte, pnrSuffix)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pnrCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate PNR: %w", err)
		}
		suffix[i] = pnrCharset[n.Int64()]
	}
	return pnrPrefix + string(suffix), nil
}
