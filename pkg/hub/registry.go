package hub

import (
	"log/slog"
	"sync"
)

// Registry owns one running Hub per name, created on first use.
type Registry struct {
	logger *slog.Logger

	mu   sync.Mutex
	hubs map[string]*Hub
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger, hubs: make(map[string]*Hub)}
}

// Get returns the hub for name, starting it if needed.
func (r *Registry) Get(name string) *Hub {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hubs[name]
	if !ok {
		h = New(name, r.logger)
		r.hubs[name] = h
		go h.Run()
	}
	return h
}

// BroadcastJSON sends v to the hub for name if one exists. Names nobody has
// subscribed to are ignored.
func (r *Registry) BroadcastJSON(name string, v any) error {
	r.mu.Lock()
	h, ok := r.hubs[name]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return h.BroadcastJSON(v)
}

// Close stops and forgets the hub for name.
func (r *Registry) Close(name string) {
	r.mu.Lock()
	h, ok := r.hubs[name]
	delete(r.hubs, name)
	r.mu.Unlock()
	if ok {
		h.Stop()
	}
}

// CloseAll stops every hub.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	hubs := r.hubs
	r.hubs = make(map[string]*Hub)
	r.mu.Unlock()
	for _, h := range hubs {
		h.Stop()
	}
}

// Len returns the number of live hubs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hubs)
}
