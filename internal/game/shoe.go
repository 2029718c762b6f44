package game

import (
	"math/rand"
	"sync"
	"time"
)

// Shoe is the source of ranks for dealing. Rounds only ever draw; a shoe
// never runs out.
type Shoe interface {
	Draw() Rank
}

// InfiniteShoe deals ranks uniformly at random with replacement. Dealt
// cards are never removed from the draw pool, so the shoe models an
// unlimited number of decks and a draw can never fail. One shoe can be
// shared by every room in the process.
type InfiniteShoe struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShoe creates a shoe seeded from the wall clock.
func NewShoe() *InfiniteShoe {
	return NewShoeWithSeed(time.Now().UnixNano())
}

// NewShoeWithSeed creates a shoe with a fixed seed for reproducible deals.
func NewShoeWithSeed(seed int64) *InfiniteShoe {
	return &InfiniteShoe{rng: rand.New(rand.NewSource(seed))}
}

// Draw returns one rank, uniformly distributed over the thirteen ranks.
func (s *InfiniteShoe) Draw() Rank {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ranks[s.rng.Intn(len(Ranks))]
}
