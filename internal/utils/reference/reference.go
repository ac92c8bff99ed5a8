// Package reference issues transfer references: "TRF" followed by a ULID (48-bit
// millisecond timestamp plus 80 bits of monotonic randomness).
package reference

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix is prepended to every transfer reference.
const Prefix = "TRF"

// Generator is safe for concurrent use. References issued by one Generator within the
// same millisecond are strictly increasing.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator returns a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewReference returns a fresh reference.
func (g *Generator) NewReference() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := ulid.Timestamp(g.now())
	id, err := ulid.New(ts, g.entropy)
	if err != nil {
		// monotonic overflow within one millisecond; fall back to fresh randomness
		id = ulid.MustNew(ts, rand.Reader)
	}
	return Prefix + id.String()
}
