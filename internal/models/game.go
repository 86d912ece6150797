package models

import "gorm.io/gorm"

// Game represents a game that lobbies can be created for.
type Game struct {
	gorm.Model
	Name     string `gorm:"size:255;unique;not null"`
	Platform string `gorm:"size:50"`
}
