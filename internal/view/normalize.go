package view

import (
	"encoding/json"
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/feed"
	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// Decoded row shapes. Pointer fields flag absent keys so a truncated or
// foreign payload is caught here instead of corrupting the projection.

type membershipRow struct {
	ID       *uint     `json:"id"`
	LobbyID  *uint     `json:"lobby_id"`
	UserID   *uint     `json:"user_id"`
	Nickname string    `json:"nickname"`
	Role     string    `json:"role"`
	Ready    *bool     `json:"ready"`
	JoinedAt time.Time `json:"joined_at"`
}

type lobbyRow struct {
	ID         *uint  `json:"id"`
	HostID     uint   `json:"host_id"`
	GameID     uint   `json:"game_id"`
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	MaxPlayers *int   `json:"max_players"`
	Status     string `json:"status"`
}

func validStatus(s string) bool {
	switch models.LobbyStatus(s) {
	case models.LobbyOpen, models.LobbyInProgress, models.LobbyClosed:
		return true
	}
	return false
}

func decodeMembership(raw json.RawMessage) (Member, bool) {
	var row membershipRow
	if len(raw) == 0 || json.Unmarshal(raw, &row) != nil {
		return Member{}, false
	}
	if row.ID == nil || row.UserID == nil || row.Ready == nil {
		return Member{}, false
	}
	role := models.MemberRole(row.Role)
	if role != models.RoleHost && role != models.RoleMember {
		return Member{}, false
	}
	return Member{
		MembershipID: *row.ID,
		UserID:       *row.UserID,
		Nickname:     row.Nickname,
		Role:         role,
		Ready:        *row.Ready,
		JoinedAt:     row.JoinedAt,
	}, true
}

func decodeLobby(raw json.RawMessage) (LobbyInfo, bool) {
	var row lobbyRow
	if len(raw) == 0 || json.Unmarshal(raw, &row) != nil {
		return LobbyInfo{}, false
	}
	if row.ID == nil || !validStatus(row.Status) {
		return LobbyInfo{}, false
	}
	return LobbyInfo{
		ID:         *row.ID,
		HostID:     row.HostID,
		GameID:     row.GameID,
		Title:      row.Title,
		Platform:   row.Platform,
		MaxPlayers: row.MaxPlayers,
		Status:     models.LobbyStatus(row.Status),
	}, true
}

// Normalize converts one raw feed event into a domain event. It never
// returns nil: anything it cannot make sense of becomes ResyncRequested.
func Normalize(ev feed.Event) DomainEvent {
	switch ev.Table {
	case feed.TableMemberships:
		switch ev.Op {
		case feed.OpInsert:
			member, ok := decodeMembership(ev.After)
			if !ok {
				return ResyncRequested{Reason: "malformed membership insert"}
			}
			return MemberJoined{Member: member}
		case feed.OpUpdate:
			member, ok := decodeMembership(ev.After)
			if !ok {
				return ResyncRequested{Reason: "malformed membership update"}
			}
			return MemberReadyChanged{Member: member}
		case feed.OpDelete:
			member, ok := decodeMembership(ev.Before)
			if !ok {
				return ResyncRequested{Reason: "malformed membership delete"}
			}
			return MemberLeft{MembershipID: member.MembershipID, UserID: member.UserID}
		}
		return ResyncRequested{Reason: "unknown membership operation"}

	case feed.TableLobbies:
		switch ev.Op {
		case feed.OpInsert, feed.OpUpdate:
			after, ok := decodeLobby(ev.After)
			if !ok {
				return ResyncRequested{Reason: "malformed lobby payload"}
			}
			if after.Status == models.LobbyClosed {
				return LobbyStatusChanged{Status: models.LobbyClosed}
			}
			if before, ok := decodeLobby(ev.Before); ok && before.Status != after.Status {
				return LobbyStatusChanged{Status: after.Status}
			}
			return LobbyUpdated{Lobby: after}
		}
		// A lobby row is never deleted while a view is open on it.
		return ResyncRequested{Reason: "unexpected lobby operation"}
	}
	return ResyncRequested{Reason: "unknown table " + ev.Table}
}
