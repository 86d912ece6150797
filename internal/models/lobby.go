package models

import (
	"time"

	"gorm.io/gorm"
)

// LobbyStatus is the lifecycle state of a lobby. Transitions are one-way:
// open -> in_progress -> closed, or open -> closed. A closed lobby is never
// reopened.
type LobbyStatus string

const (
	LobbyOpen       LobbyStatus = "open"
	LobbyInProgress LobbyStatus = "in_progress"
	LobbyClosed     LobbyStatus = "closed"
)

// Active reports whether the lobby still accepts activity.
func (s LobbyStatus) Active() bool {
	return s == LobbyOpen || s == LobbyInProgress
}

// Lobby represents a matchmaking room where users can gather for one game
// session. The host identity is immutable for the lobby's lifetime.
type Lobby struct {
	gorm.Model
	GameID   uint   `gorm:"not null"`
	HostID   uint   `gorm:"not null"`
	Title    string `gorm:"size:255;not null"`
	Platform string `gorm:"size:50"`

	// MaxPlayers is nil for an unlimited lobby.
	MaxPlayers *int

	Status           LobbyStatus `gorm:"size:20;not null;default:'open';index"`
	HostLastActiveAt time.Time

	Game Game `gorm:"foreignKey:GameID"`
	Host User `gorm:"foreignKey:HostID"`
}
