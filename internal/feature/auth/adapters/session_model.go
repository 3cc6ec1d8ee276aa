package adapters

import (
	"time"

	"social_backend/internal/feature/auth/domain/entity"
)

// SessionModel is a row of the sessions table, used when Redis is not configured.
// user_id has no foreign key: user documents may live in MongoDB.
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    string     `gorm:"index:idx_sessions_user_created,priority:1;size:36;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"`
	CreatedAt time.Time  `gorm:"index:idx_sessions_user_created,priority:2;not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

func (SessionModel) TableName() string {
	return "sessions"
}

func (m *SessionModel) toEntity() *entity.Session {
	s := entity.Session(*m)
	return &s
}

func newSessionModel(s *entity.Session) *SessionModel {
	m := SessionModel(*s)
	return &m
}
