// Package lifecycle validates and executes membership operations against
// the lobby store, enforcing lobby invariants before any write commits.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/store"
)

// Notifier receives lifecycle transitions for user-facing fan-out. All
// calls are best effort; lifecycle outcomes never depend on them.
type Notifier interface {
	MemberJoined(ctx context.Context, lobby *models.Lobby, member *models.Membership)
	MemberKicked(ctx context.Context, lobby *models.Lobby, targetUserID uint)
	MemberBanned(ctx context.Context, lobby *models.Lobby, targetUserID uint)
}

// Manager executes join/leave/kick/ban/ready/close operations.
type Manager struct {
	store    store.Store
	notifier Notifier
}

// NewManager creates a Manager. notifier may be nil.
func NewManager(st store.Store, notifier Notifier) *Manager {
	return &Manager{store: st, notifier: notifier}
}

// CreateLobbyParams are the host-supplied lobby attributes.
type CreateLobbyParams struct {
	GameID     uint
	Title      string
	Platform   string
	MaxPlayers *int // nil means unlimited
}

// CreateLobby opens a new lobby with the creator as host. The host gets a
// Membership row like any other member, with role host.
func (m *Manager) CreateLobby(ctx context.Context, hostID uint, params CreateLobbyParams) (*models.Lobby, error) {
	now := time.Now()
	lobby := &models.Lobby{
		GameID:           params.GameID,
		HostID:           hostID,
		Title:            params.Title,
		Platform:         params.Platform,
		MaxPlayers:       params.MaxPlayers,
		Status:           models.LobbyOpen,
		HostLastActiveAt: now,
	}

	err := m.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.LockUser(ctx, hostID); err != nil {
			return err
		}
		active, err := tx.CountActiveMemberships(ctx, hostID)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyInOtherLobby
		}
		if err := tx.InsertLobby(ctx, lobby); err != nil {
			return err
		}
		host := &models.Membership{
			LobbyID:  lobby.ID,
			UserID:   hostID,
			Role:     models.RoleHost,
			JoinedAt: now,
		}
		return tx.InsertMembership(ctx, host)
	})
	if err != nil {
		return nil, err
	}
	return lobby, nil
}

// Join adds a user to a lobby after checking, in order: lobby active, not
// banned, not already a member anywhere, capacity left. The whole
// check-and-insert runs in one store transaction holding row locks on the
// lobby and then the user, so concurrent joins serialize: two joins to the
// same lobby cannot both read the pre-insert member count, and two joins
// by the same user to different lobbies cannot both pass the
// one-active-lobby check.
func (m *Manager) Join(ctx context.Context, lobbyID, userID uint) (*models.Membership, error) {
	member := &models.Membership{
		LobbyID:  lobbyID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: time.Now(),
	}

	var lobby *models.Lobby
	var existing []models.Membership
	err := m.store.WithinTx(ctx, func(tx store.Store) error {
		var err error
		lobby, err = tx.GetLobbyForUpdate(ctx, lobbyID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrLobbyNotFound
		}
		if err != nil {
			return err
		}
		if !lobby.Status.Active() {
			return ErrLobbyClosed
		}

		banned, err := tx.HasBan(ctx, lobbyID, userID)
		if err != nil {
			return err
		}
		if banned {
			return ErrBanned
		}

		// Lock order is lobby first, then user, everywhere.
		if err := tx.LockUser(ctx, userID); err != nil {
			return err
		}

		existing, err = tx.ListMemberships(ctx, lobbyID)
		if err != nil {
			return err
		}
		for _, mem := range existing {
			if mem.UserID == userID {
				return ErrAlreadyMember
			}
		}
		active, err := tx.CountActiveMemberships(ctx, userID)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyInOtherLobby
		}

		if lobby.MaxPlayers != nil && len(existing) >= *lobby.MaxPlayers {
			return ErrLobbyFull
		}

		return tx.InsertMembership(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	m.systemMessage(ctx, lobbyID, fmt.Sprintf("user %d joined the lobby", userID))
	m.recordEncounters(ctx, lobbyID, userID, existing)
	if m.notifier != nil {
		m.notifier.MemberJoined(ctx, lobby, member)
	}
	return member, nil
}

// Leave removes the caller's own membership. Idempotent: leaving a lobby
// the user is not in is a no-op. The host cannot leave; it must Close.
func (m *Manager) Leave(ctx context.Context, lobbyID, userID uint) error {
	members, err := m.store.ListMemberships(ctx, lobbyID)
	if err != nil {
		return err
	}
	for _, mem := range members {
		if mem.UserID != userID {
			continue
		}
		if mem.Role == models.RoleHost {
			return ErrNotAuthorized
		}
		if err := m.store.DeleteMembership(ctx, mem.ID); err != nil {
			return err
		}
		m.systemMessage(ctx, lobbyID, fmt.Sprintf("user %d left the lobby", userID))
		return nil
	}
	return nil
}

// Kick removes a member on the host's behalf.
func (m *Manager) Kick(ctx context.Context, lobbyID, actingUserID, targetMembershipID uint) error {
	lobby, target, err := m.hostAction(ctx, lobbyID, actingUserID, targetMembershipID)
	if err != nil {
		return err
	}
	if err := m.store.DeleteMembership(ctx, target.ID); err != nil {
		return err
	}
	m.systemMessage(ctx, lobbyID, fmt.Sprintf("user %d was kicked by the host", target.UserID))
	if m.notifier != nil {
		m.notifier.MemberKicked(ctx, lobby, target.UserID)
	}
	return nil
}

// Ban removes a member and blocks them from rejoining for the lobby's
// lifetime, even after the membership row is gone.
func (m *Manager) Ban(ctx context.Context, lobbyID, actingUserID, targetMembershipID uint) error {
	lobby, target, err := m.hostAction(ctx, lobbyID, actingUserID, targetMembershipID)
	if err != nil {
		return err
	}
	if err := m.store.DeleteMembership(ctx, target.ID); err != nil {
		return err
	}
	if err := m.store.InsertBan(ctx, &models.Ban{LobbyID: lobbyID, PlayerID: target.UserID}); err != nil {
		return err
	}
	m.systemMessage(ctx, lobbyID, fmt.Sprintf("user %d was banned by the host", target.UserID))
	if m.notifier != nil {
		m.notifier.MemberBanned(ctx, lobby, target.UserID)
	}
	return nil
}

// hostAction resolves the shared preconditions of Kick and Ban: the actor
// is the host, the target belongs to this lobby, and the target is not the
// host's own membership.
func (m *Manager) hostAction(ctx context.Context, lobbyID, actingUserID, targetMembershipID uint) (*models.Lobby, *models.Membership, error) {
	lobby, err := m.store.GetLobby(ctx, lobbyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrLobbyNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if lobby.HostID != actingUserID {
		return nil, nil, ErrNotAuthorized
	}

	target, err := m.store.GetMembership(ctx, targetMembershipID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if target.LobbyID != lobbyID {
		return nil, nil, ErrMembershipNotFound
	}
	if target.Role == models.RoleHost {
		return nil, nil, ErrNotAuthorized
	}
	return lobby, target, nil
}

// ToggleReady flips the ready flag on the caller's own membership. The
// ownership check is a write predicate in the store, not a client check.
func (m *Manager) ToggleReady(ctx context.Context, membershipID, userID uint, ready bool) error {
	matched, err := m.store.UpdateMembershipReady(ctx, membershipID, userID, ready)
	if err != nil {
		return err
	}
	if matched > 0 {
		return nil
	}
	if _, err := m.store.GetMembership(ctx, membershipID); errors.Is(err, store.ErrNotFound) {
		return ErrMembershipNotFound
	}
	return ErrNotAuthorized
}

// Start moves an open lobby to in_progress. Host only.
func (m *Manager) Start(ctx context.Context, lobbyID, actingUserID uint) error {
	lobby, err := m.store.GetLobby(ctx, lobbyID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLobbyNotFound
	}
	if err != nil {
		return err
	}
	if lobby.HostID != actingUserID {
		return ErrNotAuthorized
	}
	if lobby.Status != models.LobbyOpen {
		return ErrLobbyClosed
	}
	return m.store.UpdateLobbyStatus(ctx, lobbyID, models.LobbyInProgress)
}

// Close terminally shuts a lobby. All memberships are voided; clients
// observing the transition must treat the lobby as gone.
func (m *Manager) Close(ctx context.Context, lobbyID, actingUserID uint) error {
	lobby, err := m.store.GetLobby(ctx, lobbyID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLobbyNotFound
	}
	if err != nil {
		return err
	}
	if lobby.HostID != actingUserID {
		return ErrNotAuthorized
	}
	if lobby.Status == models.LobbyClosed {
		return nil
	}
	return m.store.WithinTx(ctx, func(tx store.Store) error {
		if err := tx.DeleteLobbyMemberships(ctx, lobbyID); err != nil {
			return err
		}
		return tx.UpdateLobbyStatus(ctx, lobbyID, models.LobbyClosed)
	})
}

// AutoInvite joins each candidate into the lobby up to remaining capacity,
// short-circuiting once the lobby is full. Per-candidate failures (banned,
// already elsewhere) are swallowed; only the aggregate count is reported.
func (m *Manager) AutoInvite(ctx context.Context, lobbyID, actingUserID uint, candidateIDs []uint) (int, error) {
	lobby, err := m.store.GetLobby(ctx, lobbyID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrLobbyNotFound
	}
	if err != nil {
		return 0, err
	}
	if lobby.HostID != actingUserID {
		return 0, ErrNotAuthorized
	}

	invited := 0
	for _, candidate := range candidateIDs {
		_, err := m.Join(ctx, lobbyID, candidate)
		if errors.Is(err, ErrLobbyFull) {
			break
		}
		if err != nil {
			log.Debug().Str("module", "lifecycle").Err(err).
				Uint("lobby_id", lobbyID).Uint("user_id", candidate).
				Msg("auto-invite candidate skipped")
			continue
		}
		invited++
	}
	return invited, nil
}

// systemMessage appends a chat line, best effort.
func (m *Manager) systemMessage(ctx context.Context, lobbyID uint, text string) {
	if err := m.store.AppendSystemMessage(ctx, lobbyID, text); err != nil {
		log.Warn().Str("module", "lifecycle").Err(err).Uint("lobby_id", lobbyID).Msg("system message failed")
	}
}

// recordEncounters writes a recent-encounter row between the joiner and
// every member already present, best effort, both directions.
func (m *Manager) recordEncounters(ctx context.Context, lobbyID, userID uint, existing []models.Membership) {
	for _, mem := range existing {
		pairs := []models.RecentEncounter{
			{UserID: userID, OtherUserID: mem.UserID, LobbyID: lobbyID},
			{UserID: mem.UserID, OtherUserID: userID, LobbyID: lobbyID},
		}
		for i := range pairs {
			if err := m.store.InsertEncounter(ctx, &pairs[i]); err != nil {
				log.Warn().Str("module", "lifecycle").Err(err).Uint("lobby_id", lobbyID).Msg("encounter record failed")
				return
			}
		}
	}
}
