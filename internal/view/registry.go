package view

import (
	"context"
	"sync"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
)

type viewKey struct {
	lobbyID uint
	userID  uint
}

type viewEntry struct {
	view *View
	refs int
}

// Registry owns the open lobby views, one per (lobby, viewer) pair. A view
// is created when its first consumer acquires it and torn down when the
// last one releases it or when the lobby reaches its terminal state.
type Registry struct {
	mu      sync.Mutex
	fetcher Fetcher
	hub     *feed.Hub
	opts    Options
	views   map[viewKey]*viewEntry
}

// NewRegistry creates a Registry.
func NewRegistry(fetcher Fetcher, hub *feed.Hub, opts Options) *Registry {
	return &Registry{
		fetcher: fetcher,
		hub:     hub,
		opts:    opts,
		views:   make(map[viewKey]*viewEntry),
	}
}

// Acquire opens (or reuses) the viewer's view of a lobby.
func (r *Registry) Acquire(ctx context.Context, lobbyID, userID uint) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := viewKey{lobbyID: lobbyID, userID: userID}
	if entry, ok := r.views[key]; ok {
		select {
		case <-entry.view.Done():
			// terminal view still registered; replace it
			delete(r.views, key)
		default:
			entry.refs++
			return entry.view, nil
		}
	}

	v, err := Open(ctx, lobbyID, r.fetcher, r.hub, r.opts)
	if err != nil {
		return nil, err
	}
	r.views[key] = &viewEntry{view: v, refs: 1}
	return v, nil
}

// Lookup returns the viewer's open view, if any. Mutation handlers use it
// to apply optimistic predictions for callers that are watching the lobby.
func (r *Registry) Lookup(lobbyID, userID uint) (*View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.views[viewKey{lobbyID: lobbyID, userID: userID}]
	if !ok {
		return nil, false
	}
	select {
	case <-entry.view.Done():
		return nil, false
	default:
		return entry.view, true
	}
}

// Release drops one reference; the last one closes the view.
func (r *Registry) Release(lobbyID, userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := viewKey{lobbyID: lobbyID, userID: userID}
	entry, ok := r.views[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(r.views, key)
		entry.view.Close()
	}
}
