// Package store defines the read/write contract the sync core depends on,
// with a postgres-backed implementation and an in-memory one. Every
// committed mutation of a lobby or membership row is published to the
// change feed so subscribed lobby views can reconcile.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("store: not found")

// Publisher receives change events for committed writes.
type Publisher interface {
	Publish(lobbyID uint, ev feed.Event)
}

// Store is the authoritative lobby state contract. Mutations are scoped to
// single rows by primary key; WithinTx exists for the one multi-row
// invariant, join's check-and-insert.
type Store interface {
	// WithinTx runs fn atomically. Change events produced inside fn are
	// published only after the transaction commits.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	GetLobby(ctx context.Context, id uint) (*models.Lobby, error)
	// GetLobbyForUpdate reads a lobby holding a row lock until the enclosing
	// transaction ends. Join takes it before its capacity check so two
	// concurrent joins against the same lobby serialize instead of both
	// reading the pre-insert member count. Only meaningful inside WithinTx.
	GetLobbyForUpdate(ctx context.Context, id uint) (*models.Lobby, error)
	InsertLobby(ctx context.Context, lobby *models.Lobby) error
	UpdateLobbyStatus(ctx context.Context, id uint, status models.LobbyStatus) error
	TouchHostActivity(ctx context.Context, lobbyID uint, at time.Time) error
	StaleLobbies(ctx context.Context, cutoff time.Time) ([]models.Lobby, error)
	SearchLobbies(ctx context.Context, gameID uint, offset, limit int) ([]models.Lobby, int64, error)

	// ListMemberships returns a lobby's members ordered by join time.
	ListMemberships(ctx context.Context, lobbyID uint) ([]models.Membership, error)
	GetMembership(ctx context.Context, id uint) (*models.Membership, error)
	// CountActiveMemberships counts the user's memberships in lobbies whose
	// status is open or in_progress.
	CountActiveMemberships(ctx context.Context, userID uint) (int64, error)
	InsertMembership(ctx context.Context, m *models.Membership) error
	DeleteMembership(ctx context.Context, id uint) error
	// DeleteLobbyMemberships voids all memberships of a closing lobby. No
	// per-row events are published; the terminal lobby event covers it.
	DeleteLobbyMemberships(ctx context.Context, lobbyID uint) error
	// UpdateMembershipReady flips ready only when userID owns the row.
	// Returns the number of rows matched by the write predicate.
	UpdateMembershipReady(ctx context.Context, id, userID uint, ready bool) (int64, error)

	InsertBan(ctx context.Context, ban *models.Ban) error
	HasBan(ctx context.Context, lobbyID, userID uint) (bool, error)

	AppendSystemMessage(ctx context.Context, lobbyID uint, text string) error
	InsertEncounter(ctx context.Context, e *models.RecentEncounter) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	// LockUser takes a row lock on the user until the enclosing transaction
	// ends, serializing concurrent joins by the same user across different
	// lobbies. Returns ErrNotFound for an unknown user. Lock order is always
	// lobby first, then user.
	LockUser(ctx context.Context, id uint) error
	TouchUserActivity(ctx context.Context, id uint, at time.Time) error
	// IsFollower reports whether followerID has a relation toward userID.
	IsFollower(ctx context.Context, followerID, userID uint) (bool, error)
	InsertInvite(ctx context.Context, inv *models.Invite) error
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
}
