package random

import (
	"crypto/rand"
	"encoding/binary"
)

// Alphanumeric is the alphabet used for seat secrets.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Random is the source of randomness for bots and seat secrets.
type Random interface {
	// Intn returns a value in [0, n), or 0 when n <= 0.
	Intn(n int) int

	// String returns length characters drawn from alphabet.
	String(length int, alphabet string) string
}

// Source reads from crypto/rand.
type Source struct{}

func New() *Source {
	return &Source{}
}

func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	bound := uint64(n)
	// Reject the top slice of the range so every residue is equally likely.
	limit := ^uint64(0) - (^uint64(0) % bound)
	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("random: crypto source failed: " + err.Error())
		}
		v := binary.LittleEndian.Uint64(buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

func (s *Source) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[s.Intn(len(alphabet))]
	}
	return string(out)
}
