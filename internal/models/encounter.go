package models

import "gorm.io/gorm"

// RecentEncounter records that two users shared a lobby. Written best-effort
// on join; consumed by an external recommendation feature.
type RecentEncounter struct {
	gorm.Model
	UserID      uint `gorm:"not null;index"`
	OtherUserID uint `gorm:"not null"`
	LobbyID     uint `gorm:"not null"`
}
