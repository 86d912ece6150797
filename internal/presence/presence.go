// Package presence keeps the soft liveness signal alive: the host's
// heartbeat refreshes activity timestamps, and an opportunistic sweep
// closes lobbies whose host went quiet. This is not a lease; a crashed
// host leaves its lobby open until the next sweep runs.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
)

// Heartbeat periodically refreshes host_last_active_at on the lobby and
// last_active_at on the host's own profile, independent of user activity.
// One heartbeat runs per hosted lobby view and stops with it.
type Heartbeat struct {
	store    store.Store
	lobbyID  uint
	hostID   uint
	interval time.Duration
	cancel   context.CancelFunc
}

// StartHeartbeat begins refreshing immediately and then on every interval.
func StartHeartbeat(parent context.Context, st store.Store, lobbyID, hostID uint, interval time.Duration) *Heartbeat {
	ctx, cancel := context.WithCancel(parent)
	h := &Heartbeat{
		store:    st,
		lobbyID:  lobbyID,
		hostID:   hostID,
		interval: interval,
		cancel:   cancel,
	}
	go h.run(ctx)
	return h
}

func (h *Heartbeat) run(ctx context.Context) {
	h.beat(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	now := time.Now()
	if err := h.store.TouchHostActivity(ctx, h.lobbyID, now); err != nil {
		log.Warn().Str("module", "presence").Err(err).Uint("lobby_id", h.lobbyID).Msg("host heartbeat failed")
	}
	if err := h.store.TouchUserActivity(ctx, h.hostID, now); err != nil {
		log.Warn().Str("module", "presence").Err(err).Uint("user_id", h.hostID).Msg("user heartbeat failed")
	}
}

// Stop ends the heartbeat.
func (h *Heartbeat) Stop() { h.cancel() }

// Sweeper transitions lobbies with a stale host to closed. It has no clock
// of its own; callers invoke Sweep opportunistically from lobby reads. A
// short cooldown keeps hot read paths from sweeping on every request.
type Sweeper struct {
	store     store.Store
	threshold time.Duration
	cooldown  time.Duration

	mu       sync.Mutex
	lastRun  time.Time
	sweeping bool
}

// NewSweeper creates a Sweeper that closes lobbies whose host has not
// refreshed within threshold.
func NewSweeper(st store.Store, threshold time.Duration) *Sweeper {
	return &Sweeper{
		store:     st,
		threshold: threshold,
		cooldown:  threshold / 4,
	}
}

// Sweep closes all currently stale lobbies and reports how many. Calls
// within the cooldown window are no-ops.
func (s *Sweeper) Sweep(ctx context.Context) int {
	s.mu.Lock()
	if s.sweeping || time.Since(s.lastRun) < s.cooldown {
		s.mu.Unlock()
		return 0
	}
	s.sweeping = true
	s.lastRun = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	stale, err := s.store.StaleLobbies(ctx, time.Now().Add(-s.threshold))
	if err != nil {
		log.Warn().Str("module", "presence").Err(err).Msg("stale lobby query failed")
		return 0
	}

	closed := 0
	for _, lobby := range stale {
		lobbyID := lobby.ID
		err := s.store.WithinTx(ctx, func(tx store.Store) error {
			if err := tx.DeleteLobbyMemberships(ctx, lobbyID); err != nil {
				return err
			}
			return tx.UpdateLobbyStatus(ctx, lobbyID, models.LobbyClosed)
		})
		if err != nil {
			log.Warn().Str("module", "presence").Err(err).Uint("lobby_id", lobbyID).Msg("stale lobby close failed")
			continue
		}
		log.Info().Str("module", "presence").Uint("lobby_id", lobbyID).Msg("closed stale lobby")
		closed++
	}
	return closed
}
