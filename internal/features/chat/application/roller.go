package application

import (
	"math/rand"
	"sync"

	"advanced-prompt/internal/features/chat/domain"
)

// Roller draws modifiers from a catalog. It is safe for concurrent use.
type Roller struct {
	mu      sync.Mutex
	rng     *rand.Rand
	catalog domain.Catalog
}

// NewRoller creates a roller over catalog seeded with seed.
func NewRoller(catalog domain.Catalog, seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed)), catalog: catalog}
}

// Roll picks a fresh set of modifiers.
func (r *Roller) Roll() domain.Roll {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog.Roll(r.rng)
}

// RollTags picks a fresh set of modifiers and returns only their names.
func (r *Roller) RollTags() []string {
	return r.Roll().Tags
}

// Seed returns a random eight digit request seed.
func (r *Roller) Seed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.NewSeed(r.rng)
}
