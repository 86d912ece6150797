package models

import "time"

// RelationStatus defines the state of a relationship between two users.
type RelationStatus string

const (
	// RelationFollowing is a one-way follow: FromUser follows ToUser.
	RelationFollowing RelationStatus = "following"

	// RelationFriends means the follow was reciprocated.
	RelationFriends RelationStatus = "friends"
)

// UserRelation represents the relationship between two users. Invite
// delivery preferences consult it: a user may restrict invites to people
// who follow them.
// The primary key is a composite of (FromUserID, ToUserID) to ensure uniqueness.
type UserRelation struct {
	FromUserID uint           `gorm:"primaryKey"`
	ToUserID   uint           `gorm:"primaryKey"`
	Status     RelationStatus `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	FromUser User `gorm:"foreignKey:FromUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToUser   User `gorm:"foreignKey:ToUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
