package preview

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// HandlerID identifies a registered renderer factory.
type HandlerID string

// Factory constructs a fresh renderer instance.
type Factory func() (Renderer, error)

// Registry maps file extensions to renderer factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[HandlerID]Factory
	assoc     map[string]HandlerID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[HandlerID]Factory),
		assoc:     make(map[string]HandlerID),
	}
}

// Register adds or replaces a factory.
func (r *Registry) Register(id HandlerID, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// Associate binds ext (".txt") to a registered handler.
func (r *Registry) Associate(ext string, id HandlerID) error {
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("associate %q: empty extension", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[id]; !ok {
		return fmt.Errorf("associate %s: %w %q", ext, ErrUnknownHandler, id)
	}
	r.assoc[ext] = id
	return nil
}

// FindPreviewHandler returns the handler associated with ext.
func (r *Registry) FindPreviewHandler(ext string) (HandlerID, bool) {
	ext = normalizeExt(ext)
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.assoc[ext]
	if !ok {
		return "", false
	}
	_, registered := r.factories[id]
	return id, registered
}

// Create runs the factory for id.
func (r *Registry) Create(id HandlerID) (Renderer, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownHandler, id)
	}
	return factory()
}

// Handlers lists registered ids in sorted order.
func (r *Registry) Handlers() []HandlerID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]HandlerID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
