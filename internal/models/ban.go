package models

import "time"

// Ban blocks a player from joining a lobby, even when no Membership exists.
// Bans are never updated and last for the lobby's lifetime.
// The primary key is a composite of (LobbyID, PlayerID) to ensure uniqueness.
type Ban struct {
	LobbyID   uint `gorm:"primaryKey"`
	PlayerID  uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
