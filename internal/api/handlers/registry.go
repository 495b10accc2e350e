package handlers

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inferloop/synthetizer/internal/sampling"
	"github.com/inferloop/synthetizer/pkg/errors"
)

// Entry is one fitted sampler held by the registry. Samplers are not safe
// for concurrent draws, so every draw holds the entry lock.
type Entry struct {
	ID        string        `json:"id"`
	Path      string        `json:"path,omitempty"`
	Kind      sampling.Kind `json:"kind"`
	Observed  int           `json:"observed"`
	CreatedAt time.Time     `json:"created_at"`
	sampler   sampling.Sampler
	mu        sync.Mutex
}

// With runs fn while holding the entry lock
func (e *Entry) With(fn func(sampling.Sampler) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sampler)
}

// CountRecorder is told the registry size after every change
type CountRecorder interface {
	SetSamplersRegistered(count int)
}

// Registry stores fitted samplers by id
type Registry struct {
	entries  map[string]*Entry
	recorder CountRecorder
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry. recorder may be nil.
func NewRegistry(recorder CountRecorder) *Registry {
	return &Registry{
		entries:  make(map[string]*Entry),
		recorder: recorder,
	}
}

// Add stores sampler under a new id
func (r *Registry) Add(path string, observed int, sampler sampling.Sampler) *Entry {
	entry := &Entry{
		ID:        uuid.New().String(),
		Path:      path,
		Kind:      sampler.Kind(),
		Observed:  observed,
		CreatedAt: time.Now().UTC(),
		sampler:   sampler,
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	count := len(r.entries)
	r.mu.Unlock()

	r.record(count)
	return entry
}

// Get returns the entry with id
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}
	return entry, nil
}

// Delete removes the entry with id
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	count := len(r.entries)
	r.mu.Unlock()

	if !ok {
		return notFound(id)
	}
	r.record(count)
	return nil
}

// List returns all entries, oldest first
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// Len returns the number of stored samplers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) record(count int) {
	if r.recorder != nil {
		r.recorder.SetSamplersRegistered(count)
	}
}

func notFound(id string) error {
	return errors.NewNotFoundError(errors.CodeSamplerNotFound, "sampler not found").
		WithContext("id", id)
}
