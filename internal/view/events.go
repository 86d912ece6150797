// Package view holds the client-side half of lobby synchronization: it
// normalizes raw change-feed events into domain events and reconciles them
// against optimistic local mutations inside a per-lobby-view actor.
package view

import (
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// LobbyInfo is the projected lobby row.
type LobbyInfo struct {
	ID         uint               `json:"id"`
	HostID     uint               `json:"host_id"`
	GameID     uint               `json:"game_id"`
	Title      string             `json:"title"`
	Platform   string             `json:"platform"`
	MaxPlayers *int               `json:"max_players"`
	Status     models.LobbyStatus `json:"status"`
}

// Member is the projected membership row. Events carry the full
// post-mutation member, never a delta, so applying one is always an
// upsert by MembershipID.
type Member struct {
	MembershipID uint              `json:"membership_id"`
	UserID       uint              `json:"user_id"`
	Nickname     string            `json:"nickname,omitempty"`
	Role         models.MemberRole `json:"role"`
	Ready        bool              `json:"ready"`
	JoinedAt     time.Time         `json:"joined_at"`
}

// DomainEvent is the closed set of normalized events. Nothing downstream
// of the normalizer ever touches a raw feed payload.
type DomainEvent interface{ isDomainEvent() }

type MemberJoined struct{ Member Member }

type MemberLeft struct {
	MembershipID uint
	UserID       uint
}

type MemberReadyChanged struct{ Member Member }

type LobbyStatusChanged struct{ Status models.LobbyStatus }

type LobbyUpdated struct{ Lobby LobbyInfo }

// ResyncRequested is the degradation path: unknown or malformed payloads
// become a forced resync instead of being dropped silently.
type ResyncRequested struct{ Reason string }

func (MemberJoined) isDomainEvent()       {}
func (MemberLeft) isDomainEvent()         {}
func (MemberReadyChanged) isDomainEvent() {}
func (LobbyStatusChanged) isDomainEvent() {}
func (LobbyUpdated) isDomainEvent()       {}
func (ResyncRequested) isDomainEvent()    {}
