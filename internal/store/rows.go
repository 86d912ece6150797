package store

import (
	"time"

	"github.com/yazidtalbi/gaminglobby-sub000/internal/models"
)

// Row payloads carried on change events. These are the wire shape of the
// feed, deliberately flat; consumers decode them behind their own
// normalization boundary and must not assume more than this.

type LobbyRow struct {
	ID         uint   `json:"id"`
	HostID     uint   `json:"host_id"`
	GameID     uint   `json:"game_id"`
	Title      string `json:"title"`
	Platform   string `json:"platform"`
	MaxPlayers *int   `json:"max_players"`
	Status     string `json:"status"`
}

type MembershipRow struct {
	ID       uint      `json:"id"`
	LobbyID  uint      `json:"lobby_id"`
	UserID   uint      `json:"user_id"`
	Nickname string    `json:"nickname,omitempty"`
	Role     string    `json:"role"`
	Ready    bool      `json:"ready"`
	JoinedAt time.Time `json:"joined_at"`
}

func lobbyRowOf(l *models.Lobby) LobbyRow {
	return LobbyRow{
		ID:         l.ID,
		HostID:     l.HostID,
		GameID:     l.GameID,
		Title:      l.Title,
		Platform:   l.Platform,
		MaxPlayers: l.MaxPlayers,
		Status:     string(l.Status),
	}
}

func membershipRowOf(m *models.Membership) MembershipRow {
	return MembershipRow{
		ID:       m.ID,
		LobbyID:  m.LobbyID,
		UserID:   m.UserID,
		Nickname: m.User.Nickname,
		Role:     string(m.Role),
		Ready:    m.Ready,
		JoinedAt: m.JoinedAt,
	}
}
