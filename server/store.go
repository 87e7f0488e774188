package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/polyinfer/core/model"
)

// Model is a network hosted by the server.
type Model struct {
	ID      string
	TypeID  string
	Shape   []int
	Created time.Time

	// Net serializes parameter updates against concurrent forward passes.
	Net *model.Synchronized
}

// Snapshot returns the model's current weights.
func (m *Model) Snapshot() *model.ModelWeights {
	return model.Snapshot(m.TypeID, m.Shape, m.Net)
}

// Store holds hosted models keyed by id, in creation order.
type Store struct {
	mu     sync.RWMutex
	models map[string]*Model
	order  []string
	clock  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		models: make(map[string]*Model),
		clock:  time.Now,
	}
}

// Add hosts net under a fresh id. net must not be used directly afterwards.
func (s *Store) Add(typeID string, shape []int, net model.Network) *Model {
	sh := make([]int, len(shape))
	copy(sh, shape)

	m := &Model{
		ID:      uuid.NewString(),
		TypeID:  typeID,
		Shape:   sh,
		Created: s.clock(),
		Net:     model.NewSynchronized(net),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[m.ID] = m
	s.order = append(s.order, m.ID)
	return m
}

// Get returns the model with the given id.
func (s *Store) Get(id string) (*Model, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[id]
	return m, ok
}

// Delete removes a model and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[id]; !ok {
		return false
	}
	delete(s.models, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the hosted models in creation order.
func (s *Store) List() []*Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Model, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.models[id])
	}
	return out
}

// Len returns the number of hosted models.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.models)
}
