package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationKind tags the lifecycle transition a notification came from.
type NotificationKind string

const (
	NotifyInviteCreated NotificationKind = "invite_created"
	NotifyMemberJoined  NotificationKind = "member_joined"
	NotifyMemberKicked  NotificationKind = "member_kicked"
	NotifyMemberBanned  NotificationKind = "member_banned"
)

// Notification is a user-facing, out-of-band message produced by the
// notification fan-out.
type Notification struct {
	gorm.Model
	UserID  uint             `gorm:"not null;index"`
	Kind    NotificationKind `gorm:"size:50;not null"`
	LobbyID uint
	Body    string `gorm:"not null"`
	ReadAt  *time.Time
}
