// Package preview keeps the bytes of not-yet-submitted images behind
// explicitly released handles.
package preview

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// RefPrefix marks references that point at a local preview rather than a remote URL.
const RefPrefix = "preview:"

// ErrReleased is returned when a released handle is read.
var ErrReleased = errors.New("preview handle already released")

// Store owns the bytes behind every live preview handle.
type Store struct {
	mu       sync.Mutex
	entries  map[string][]byte
	released int64
}

// NewStore creates an empty preview store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Allocate copies data into the store and returns a handle to it.
func (s *Store) Allocate(data []byte) *Handle {
	buf := make([]byte, len(data))
	copy(buf, data)

	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = buf
	s.mu.Unlock()

	return &Handle{id: id, store: s}
}

// Len reports how many handles are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Released reports how many handles have been released over the store's life.
func (s *Store) Released() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Lookup returns the bytes for a reference produced by Handle.Ref.
func (s *Store) Lookup(ref string) ([]byte, bool) {
	if len(ref) <= len(RefPrefix) || ref[:len(RefPrefix)] != RefPrefix {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.entries[ref[len(RefPrefix):]]
	return data, ok
}

func (s *Store) free(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		delete(s.entries, id)
		s.released++
	}
}

// Handle is an owned reference to preview bytes. Release frees them; it is
// safe to call more than once but only the first call has an effect.
type Handle struct {
	id    string
	store *Store
	once  sync.Once
}

// Ref returns the display reference for this handle.
func (h *Handle) Ref() string {
	return RefPrefix + h.id
}

// Bytes returns the preview bytes, or ErrReleased.
func (h *Handle) Bytes() ([]byte, error) {
	data, ok := h.store.Lookup(h.Ref())
	if !ok {
		return nil, ErrReleased
	}
	return data, nil
}

// Release frees the bytes behind the handle.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.store.free(h.id)
	})
}
