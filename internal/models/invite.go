package models

import "gorm.io/gorm"

// InviteStatus is the recipient-side state of an invite.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Invite asks a user to join a lobby. Accepting an invite does not grant a
// Membership by itself; the recipient must still join.
type Invite struct {
	gorm.Model
	LobbyID    uint         `gorm:"not null;index"`
	FromUserID uint         `gorm:"not null"`
	ToUserID   uint         `gorm:"not null;index"`
	Status     InviteStatus `gorm:"size:20;not null;default:'pending'"`
}
