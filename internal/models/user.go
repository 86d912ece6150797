package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// LastActiveAt is refreshed by the presence heartbeat while the user
	// hosts an open lobby view.
	LastActiveAt time.Time

	// Invite preferences. Checked at invite creation time, so a rejected
	// invite never persists.
	AllowInvites              bool `gorm:"not null;default:true"`
	AllowInvitesFromStrangers bool `gorm:"not null;default:true"`
}
