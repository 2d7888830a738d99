package controller

import (
	"context"
	"sync"

	"github.com/Maselkov/Toothy/internal/music/session"
)

// SessionFactory builds the voice session for a guild controller.
type SessionFactory func(guildID string) session.Session

// Registry tracks the live controller per guild. Controllers register on
// creation and remove themselves on teardown, so lookups never return a
// stopped controller for long.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
	newSession  SessionFactory
	store       SettingsStore
	opts        []Option
}

func NewRegistry(store SettingsStore, newSession SessionFactory, opts ...Option) *Registry {
	return &Registry{
		controllers: make(map[string]*Controller),
		newSession:  newSession,
		store:       store,
		opts:        opts,
	}
}

// Get returns the guild's controller, if one is running.
func (r *Registry) Get(guildID string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[guildID]
	return c, ok
}

// GetOrCreate returns the running controller for the guild, creating and
// starting one with the given DJ when none exists.
func (r *Registry) GetOrCreate(ctx context.Context, guildID, djUserID string) *Controller {
	r.mu.Lock()
	if c, ok := r.controllers[guildID]; ok {
		r.mu.Unlock()
		return c
	}
	c := New(guildID, djUserID, r.newSession(guildID), r.store, r.opts...)
	r.controllers[guildID] = c
	r.mu.Unlock()

	c.Start(ctx, r.Remove)
	return c
}

// Remove drops the guild's controller from the registry.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, guildID)
}

// StopAll tears down every live controller, used on shutdown.
func (r *Registry) StopAll() {
	r.mu.RLock()
	live := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		live = append(live, c)
	}
	r.mu.RUnlock()

	for _, c := range live {
		c.Stop()
	}
}

// Len reports how many controllers are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controllers)
}
