package battle

import (
	"sync"

	apperr "github.com/treacherygg/pokebot/internal/errors"
)

// registry is the pair-lock over trainers currently fighting. Both ids
// enter and leave under one critical section so a trainer can never be
// in two battles at once.
type registry struct {
	mu       sync.Mutex
	opponent map[string]string
}

func newRegistry() *registry {
	return &registry{opponent: make(map[string]string)}
}

func (r *registry) claim(first, second string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.opponent[first]; busy {
		return apperr.Conflictf("<@%s> is already in a battle", first)
	}
	if _, busy := r.opponent[second]; busy {
		return apperr.Conflictf("<@%s> is already in a battle", second)
	}

	r.opponent[first] = second
	r.opponent[second] = first
	return nil
}

func (r *registry) release(first, second string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.opponent, first)
	delete(r.opponent, second)
}

func (r *registry) locked(trainerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.opponent[trainerID]
	return busy
}
