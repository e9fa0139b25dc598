package usecase

import (
	"fmt"
	"sync"

	"github.com/Victor-armando18/marketplace-rules/internal/domain"
)

// Registry owns the active rule nodes of the engine: a monotonically
// increasing id counter plus the id-to-node mapping. It is injectable state,
// not a process-wide singleton; the facade holds one registry per rule kind.
//
// Compose is destructive by contract: the two child ids are retired in the
// same critical section that publishes the composite, so no reader can
// observe a composite alongside its former children.
type Registry[T any] struct {
	mu     sync.Mutex
	nextID uint64
	nodes  map[uint64]T
	stores map[uint64]int64
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		nextID: 1,
		nodes:  make(map[uint64]T),
		stores: make(map[uint64]int64),
	}
}

// Add registers a node for a store and returns its new id.
func (r *Registry[T]) Add(storeID int64, node T) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.nodes[id] = node
	r.stores[id] = storeID
	return id
}

func (r *Registry[T]) Get(id uint64) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[id]
	return node, ok
}

// Remove retires an id. Removing an unknown id is a no-op.
func (r *Registry[T]) Remove(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[id]; !ok {
		return false
	}
	delete(r.nodes, id)
	delete(r.stores, id)
	return true
}

// ActiveFor snapshots the currently active nodes of one store.
func (r *Registry[T]) ActiveFor(storeID int64) map[uint64]T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint64]T)
	for id, node := range r.nodes {
		if r.stores[id] == storeID {
			out[id] = node
		}
	}
	return out
}

// Compose resolves every child id, builds the composite via combine, then
// retires the children and publishes the composite under one lock. The
// children become unreachable except through the new node (ownership
// transfer). All children must belong to the same store. On any error the
// registry is left untouched.
func (r *Registry[T]) Compose(ids []uint64, combine func(children []T) (T, error)) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(ids) < 2 {
		return 0, &domain.CompositionError{Code: domain.CodeTooFewChildren, Detail: fmt.Sprintf("got %d ids", len(ids))}
	}

	children := make([]T, 0, len(ids))
	storeID := int64(0)
	for i, id := range ids {
		node, ok := r.nodes[id]
		if !ok {
			return 0, &domain.CompositionError{Code: domain.CodeUnknownID, Detail: fmt.Sprintf("id %d", id)}
		}
		if i == 0 {
			storeID = r.stores[id]
		} else if r.stores[id] != storeID {
			return 0, &domain.CompositionError{Code: domain.CodeStoreMismatch, Detail: fmt.Sprintf("id %d", id)}
		}
		children = append(children, node)
	}

	composite, err := combine(children)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		delete(r.nodes, id)
		delete(r.stores, id)
	}
	id := r.nextID
	r.nextID++
	r.nodes[id] = composite
	r.stores[id] = storeID
	return id, nil
}
