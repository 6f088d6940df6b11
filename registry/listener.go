/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sync"
)

type listenerEntry struct {
	id uint64
	l  Listener
}

// listenerHub keeps listeners in registration order.
type listenerHub struct {
	mu      sync.RWMutex
	next    uint64
	entries []listenerEntry
}

func (h *listenerHub) add(l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	h.entries = append(h.entries, listenerEntry{id: id, l: l})

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *listenerHub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e.id == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}

// snapshot returns the current listeners, or nil when there are none.
func (h *listenerHub) snapshot() []Listener {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return nil
	}
	out := make([]Listener, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.l
	}
	return out
}

func (h *listenerHub) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
