// Package adapters provides repository implementations for the user feature.
package adapters

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/feature/user/usecase"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm is a SQL implementation of the UserRepository interface.
// A user's following and followers sets live in their own tables keyed by the owning user,
// so each set mutation still touches exactly one user's data.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a new instance of userGorm.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isUniqueViolation reports whether err is a duplicate key error from any supported dialect.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// sqlite without TranslateError
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create persists a new user. An empty ID is replaced with a random UUID.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.CreatedAt = m.CreatedAt
	u.UpdatedAt = m.UpdatedAt
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Followers == nil {
		u.Followers = []string{}
	}
	return nil
}

// FindByID retrieves a user with both graph sets loaded.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(r.db.WithContext(ctx), "id = ?", id)
}

// FindByEmail retrieves a user with both graph sets loaded.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(r.db.WithContext(ctx), "email = ?", email)
}

func (r *userGorm) findOne(db *gorm.DB, query string, arg any) (*entity.User, error) {
	var m UserModel
	if err := db.Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	u := m.ToEntity()
	if err := r.loadSets(db, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userGorm) loadSets(db *gorm.DB, u *entity.User) error {
	if err := db.Session(&gorm.Session{NewDB: true}).Table(setTable(entity.FieldFollowing)).
		Where("user_id = ?", u.ID).Order("created_at ASC").Pluck("target_id", &u.Following).Error; err != nil {
		return err
	}
	return db.Session(&gorm.Session{NewDB: true}).Table(setTable(entity.FieldFollowers)).
		Where("user_id = ?", u.ID).Order("created_at ASC").Pluck("target_id", &u.Followers).Error
}

// FindAll lists every user. Graph sets are not loaded.
func (r *userGorm) FindAll(ctx context.Context) ([]*entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).
		Select("id", "name", "email", "created_at", "updated_at").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

// FindAllExcept lists every user whose ID is not in ids, with only feed columns populated.
func (r *userGorm) FindAllExcept(ctx context.Context, ids []string) ([]*entity.User, error) {
	q := r.db.WithContext(ctx).Select("id", "name", "avatar_path")
	if len(ids) > 0 {
		q = q.Where("id NOT IN ?", ids)
	}
	var models []UserModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return toEntities(models), nil
}

func toEntities(models []UserModel) []*entity.User {
	users := make([]*entity.User, len(models))
	for i := range models {
		users[i] = models[i].ToEntity()
	}
	return users
}

// Update applies the patch and returns the updated user.
func (r *userGorm) Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	var out *entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cols := patchColumns(patch)
		cols["updated_at"] = time.Now()
		res := tx.Model(&UserModel{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return usecase.ErrEmailAlreadyExists
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}
		u, err := r.findOne(tx, "id = ?", id)
		out = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the user and its own graph sets, returning the user as it was.
// Rows in other users' sets that point at id are kept.
func (r *userGorm) Delete(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := r.findOne(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&FollowingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&FollowerModel{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&UserModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddToSet inserts value into the named set of user id.
func (r *userGorm) AddToSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error) {
	return r.mutateSet(ctx, id, field, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(newSetRow(field, id, value)).Error
	})
}

// RemoveFromSet removes value from the named set of user id.
func (r *userGorm) RemoveFromSet(ctx context.Context, id string, field entity.SetField, value string) (*entity.User, error) {
	return r.mutateSet(ctx, id, field, func(tx *gorm.DB) error {
		return tx.Where("user_id = ? AND target_id = ?", id, value).Delete(newSetRow(field, "", "")).Error
	})
}

func (r *userGorm) mutateSet(ctx context.Context, id string, field entity.SetField, mutate func(tx *gorm.DB) error) (*entity.User, error) {
	if !field.Valid() {
		return nil, errors.New("unknown set field: " + string(field))
	}
	var out *entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserModel{}).Where("id = ?", id).Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}
		if err := mutate(tx); err != nil {
			return err
		}
		u, err := r.findOne(tx, "id = ?", id)
		out = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
