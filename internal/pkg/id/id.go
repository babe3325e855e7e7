package id

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// entropy is shared across calls; ulid.Monotonic guarantees strictly
// increasing ids within the same millisecond, so two books created
// back-to-back never collide or swap order.
var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string for keying catalog documents. ULIDs sort
// lexicographically by creation time, so scans over a table keyed this way
// come back in rough insertion order.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}
