package ids

import (
	crand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator emite ULIDs monotônicos; a ordem lexicográfica acompanha a ordem de criação.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewGenerator() *Generator {
	return NewGeneratorAt(func() time.Time { return time.Now().UTC() })
}

// NewGeneratorAt permite carimbar os IDs com um relógio controlado (testes e replays).
func NewGeneratorAt(now func() time.Time) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(crand.Reader, 0),
		now:     now,
	}
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

func DefaultGenerator() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}
