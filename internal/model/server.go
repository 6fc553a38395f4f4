package model

import "time"

// 成员在线状态，目前只落 OFFLINE，状态流转由实时服务负责
const (
	StatusOffline int8 = 0
	StatusOnline  int8 = 1
)

type Server struct {
	ID           uint64  `gorm:"primaryKey"`
	Name         string  `gorm:"size:64;not null"`
	Description  string  `gorm:"type:text"`
	ProfileImage *string `gorm:"size:64"` // 对象存储 key，NULL = 无头像
	MemberCount  int64   `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ServerMember struct {
	ID        uint64 `gorm:"primaryKey"`
	ServerID  uint64 `gorm:"not null;index;uniqueIndex:uk_server_user"`
	UserID    uint64 `gorm:"not null;index;uniqueIndex:uk_server_user"`
	Status    int8   `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServerOutbox 服务器事件监控表
type ServerOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // server_created / member_joined
	ServerID  uint64 `gorm:"not null"`
	UserID    uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ServerOutbox) TableName() string { return "server_outbox" }
