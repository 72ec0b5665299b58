package ledger

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeRandomLength = 10
)

// NewCode generates a fresh human-shareable ticket code of the form
// TICKET-<unix millis>-<random base36 suffix>. Uniqueness is enforced by
// the store's constraint, not here; the suffix only makes collisions
// negligible so the retry path almost never runs.
func NewCode() string {
	buf := make([]byte, codeRandomLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("ticket code entropy unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("TICKET-%d-%s", time.Now().UnixMilli(), buf)
}
