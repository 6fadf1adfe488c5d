// ABOUTME: Correlation registry mapping callback tokens to pending requests
// ABOUTME: Responses are routed by token; every handle is removed when its call ends
package remote

import (
	"sync"
)

// Registry holds one pending handle per in-flight request. It is owned by
// a single client instance.
type Registry struct {
	mu      sync.Mutex
	pending map[string]chan []byte
}

func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]chan []byte)}
}

// Register creates the handle for token. The returned channel receives at
// most one payload.
func (r *Registry) Register(token string) <-chan []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan []byte, 1)
	r.pending[token] = ch
	return ch
}

// Dispatch delivers payload to the handle registered for token and removes
// it. It reports false when no such handle exists, which happens for late
// responses after a timeout.
func (r *Registry) Dispatch(token string, payload []byte) bool {
	r.mu.Lock()
	ch, ok := r.pending[token]
	delete(r.pending, token)
	r.mu.Unlock()

	if !ok {
		return false
	}
	ch <- payload
	return true
}

// Unregister drops the handle for token if it is still pending.
func (r *Registry) Unregister(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, token)
}

// Len returns the number of outstanding handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
