package upload

import (
	"sync"
	"time"
)

// registry holds open batches keyed by id. Batches are private to the
// principal that opened them; lookups by anyone else see ErrBatchNotFound.
type registry struct {
	mu      sync.RWMutex
	batches map[string]*Batch
}

func newRegistry() *registry {
	return &registry{batches: make(map[string]*Batch)}
}

func (r *registry) add(b *Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.id] = b
}

func (r *registry) get(owner, id string) (*Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok || b.owner != owner {
		return nil, ErrBatchNotFound
	}
	return b, nil
}

func (r *registry) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.batches, id)
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.batches)
}

// stale returns batches untouched since cutoff that are not uploading.
func (r *registry) stale(cutoff time.Time) []*Batch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Batch
	for _, b := range r.batches {
		at, st := b.idleSince()
		if st != StateUploading && at.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out
}
