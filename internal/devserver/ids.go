package devserver

import (
	"crypto/rand"
	"math/big"
)

const roomCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateRoomID returns a 6-character room code not rejected by taken.
func generateRoomID(taken func(string) bool) string {
	for {
		code := make([]byte, 6)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCharset))))
			if err != nil {
				// crypto/rand failing is not a recoverable condition here
				panic(err)
			}
			code[i] = roomCharset[n.Int64()]
		}
		if !taken(string(code)) {
			return string(code)
		}
	}
}
