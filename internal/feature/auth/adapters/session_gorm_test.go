package adapters

import (
	"context"
	"testing"
	"time"

	"social_backend/internal/feature/auth/domain/entity"
	"social_backend/internal/feature/auth/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSessionTestDB prepares an in-memory SQLite database for session testing.
func setupSessionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&SessionModel{}), "failed to migrate table")
	return db
}

// seedSession creates a test session in the database for testing.
func seedSession(t *testing.T, db *gorm.DB, id, userID string, expiresAt time.Time, revokedAt *time.Time) {
	t.Helper()

	session := &SessionModel{
		ID:        id,
		UserID:    userID,
		UserAgent: "test-agent",
		IPAddress: "127.0.0.1",
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		RevokedAt: revokedAt,
	}
	require.NoError(t, db.Create(session).Error, "failed to seed session")
}

func TestSessionGorm_Create(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	session := &entity.Session{
		ID:        "test-session-id-001",
		UserID:    "u1",
		UserAgent: "Mozilla/5.0",
		IPAddress: "192.168.1.1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}

	require.NoError(t, repo.Create(context.Background(), session))

	var found SessionModel
	require.NoError(t, db.Where("id = ?", session.ID).First(&found).Error)
	assert.Equal(t, "u1", found.UserID)
	assert.Equal(t, "Mozilla/5.0", found.UserAgent)

	assert.Error(t, repo.Create(context.Background(), session), "duplicate id must fail")
}

func TestSessionGorm_FindByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sessionID   string
		expectedErr error
	}{
		{name: "success: find session by ID", sessionID: "find-session-id"},
		{name: "failure: session not found", sessionID: "nonexistent-id", expectedErr: usecase.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupSessionTestDB(t)
			repo := NewSessionGorm(db)
			seedSession(t, db, "find-session-id", "u1", time.Now().Add(time.Hour), nil)

			found, err := repo.FindByID(context.Background(), tt.sessionID)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sessionID, found.ID)
			assert.Equal(t, "u1", found.UserID)
		})
	}
}

func TestSessionGorm_Revoke(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)
	ctx := context.Background()
	earlier := time.Now().Add(-time.Hour).UTC()
	seedSession(t, db, "active", "u1", time.Now().Add(time.Hour), nil)
	seedSession(t, db, "already", "u1", time.Now().Add(time.Hour), &earlier)

	require.NoError(t, repo.Revoke(ctx, "active"))
	found, err := repo.FindByID(ctx, "active")
	require.NoError(t, err)
	assert.True(t, found.Revoked())

	require.NoError(t, repo.Revoke(ctx, "already"))
	found, err = repo.FindByID(ctx, "already")
	require.NoError(t, err)
	assert.WithinDuration(t, earlier, *found.RevokedAt, time.Second, "revocation time is kept")

	assert.ErrorIs(t, repo.Revoke(ctx, "nonexistent-id"), usecase.ErrSessionNotFound)
}

func TestSessionGorm_RevokeAllByUserID(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)

	seedSession(t, db, "session-1", "u1", time.Now().Add(time.Hour), nil)
	seedSession(t, db, "session-2", "u1", time.Now().Add(time.Hour), nil)
	seedSession(t, db, "session-other", "u2", time.Now().Add(time.Hour), nil)

	require.NoError(t, repo.RevokeAllByUserID(context.Background(), "u1"))

	var user1Sessions []SessionModel
	require.NoError(t, db.Where("user_id = ?", "u1").Find(&user1Sessions).Error)
	require.Len(t, user1Sessions, 2)
	for _, s := range user1Sessions {
		assert.NotNil(t, s.RevokedAt, "session %s should be revoked", s.ID)
	}

	var user2Session SessionModel
	require.NoError(t, db.Where("user_id = ?", "u2").First(&user2Session).Error)
	assert.Nil(t, user2Session.RevokedAt, "user 2's session should not be revoked")
}

func TestSessionGorm_CountByUserID(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)

	seedSession(t, db, "active-1", "u1", time.Now().Add(time.Hour), nil)
	seedSession(t, db, "active-2", "u1", time.Now().Add(time.Hour), nil)
	seedSession(t, db, "expired", "u1", time.Now().Add(-time.Hour), nil)
	now := time.Now()
	seedSession(t, db, "revoked", "u1", time.Now().Add(time.Hour), &now)
	seedSession(t, db, "other", "u2", time.Now().Add(time.Hour), nil)

	count, err := repo.CountByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "should only count active sessions")
}

func TestSessionGorm_DeleteOldestByUserID(t *testing.T) {
	t.Parallel()

	db := setupSessionTestDB(t)
	repo := NewSessionGorm(db)

	now := time.Now()
	for _, m := range []*SessionModel{
		{ID: "oldest-session", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(time.Hour)},
		{ID: "newest-session", UserID: "u1", CreatedAt: now.Add(-1 * time.Hour), ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, db.Create(m).Error)
	}

	require.NoError(t, repo.DeleteOldestByUserID(context.Background(), "u1"))

	var count int64
	db.Model(&SessionModel{}).Where("id = ?", "oldest-session").Count(&count)
	assert.Equal(t, int64(0), count, "oldest session should be deleted")

	db.Model(&SessionModel{}).Where("id = ?", "newest-session").Count(&count)
	assert.Equal(t, int64(1), count, "newest session should still exist")

	assert.NoError(t, repo.DeleteOldestByUserID(context.Background(), "nobody"))
}
