package id

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"sync"
)

// NanoIDGen returns URL-safe random IDs of a fixed length.
type NanoIDGen func() string

// 64 symbols, so a random byte masked by 63 indexes it without bias.
const nanoIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var ErrNanoIDLength = errors.New("[nano-id] length out of range [2, 255]")

// ClassicNanoID pre-reads the random bytes of 64 IDs at a time.
// The returned generator is safe for concurrent use.
func ClassicNanoID(length int) (NanoIDGen, error) {
	if length < 2 || length > 255 {
		return nil, ErrNanoIDLength
	}
	var (
		mu     sync.Mutex
		bytes  = make([]byte, length*64)
		offset = len(bytes)
		mask   = byte(len(nanoIDAlphabet) - 1)
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()

		if offset+length > len(bytes) {
			if _, err := crand.Read(bytes); /* impossible */ err != nil {
				panic(fmt.Errorf("[nano-id] pre-allocate bytes failed (run out of data), %w", err))
			}
			offset = 0
		}
		nanoID := make([]byte, length)
		for i := range nanoID {
			nanoID[i] = nanoIDAlphabet[bytes[offset+i]&mask]
		}
		offset += length
		return string(nanoID)
	}, nil
}
