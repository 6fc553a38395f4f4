package model

import "time"

type Message struct {
	ID            uint64    `gorm:"primaryKey;index:idx_server_time_id,priority:3,sort:desc"`
	ServerID      uint64    `gorm:"not null;index:idx_server_time_id,priority:1"`
	AuthorID      uint64    `gorm:"not null;index:idx_author_time"`
	Content       string    `gorm:"type:text;not null"`
	Status        int       `gorm:"not null;default:0"` // 0=normal 1=deleted 2=banned
	ReactionCount int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"index:idx_server_time_id,priority:2,sort:desc"`
	UpdatedAt     time.Time
}

type Reaction struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_user_message"`
	MessageID uint64 `gorm:"not null;index;uniqueIndex:uk_user_message"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Reaction) TableName() string {
	return "message_reactions"
}
