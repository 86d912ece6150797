package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberRole distinguishes the host membership from ordinary members.
type MemberRole string

const (
	RoleHost   MemberRole = "host"
	RoleMember MemberRole = "member"
)

// Membership links a user to a lobby they have joined. A user has at most
// one row per lobby, and at most one row across all lobbies whose status is
// open or in_progress (enforced at join time inside a store transaction).
type Membership struct {
	gorm.Model
	LobbyID  uint       `gorm:"not null;uniqueIndex:idx_lobby_user"`
	UserID   uint       `gorm:"not null;uniqueIndex:idx_lobby_user"`
	Role     MemberRole `gorm:"size:20;not null;default:'member'"`
	Ready    bool       `gorm:"not null;default:false"`
	JoinedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}
