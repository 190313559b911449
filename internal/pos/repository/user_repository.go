package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/domain"
)

// GormUserRepository implements domain.UserRepository
type GormUserRepository struct {
	conn conn
}

var userColumns = []string{"username", "password_hash", "role"}

// Create inserts a new user
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := startSpan(ctx, "repository.User.Create", attribute.String("user.username", user.Username))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: %w", domain.ErrDuplicateUsername, err)
		}
		return spanError(span, writeError("create user", err))
	}
	return nil
}

// FindByID retrieves a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (domain.User, bool, error) {
	ctx, span := startSpan(ctx, "repository.User.FindByID", attribute.Int("user.id", int(id)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return domain.User{}, false, spanError(span, err)
	}
	return r.first(span, db.Where("id = ?", id))
}

// FindByUsername retrieves a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	ctx, span := startSpan(ctx, "repository.User.FindByUsername")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return domain.User{}, false, spanError(span, err)
	}
	return r.first(span, db.Where("username = ?", username))
}

func (r *GormUserRepository) first(span trace.Span, query *gorm.DB) (domain.User, bool, error) {
	var user domain.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, spanError(span, readError("find user", err))
	}
	return user, true, nil
}

// FindAll lists users ordered by username
func (r *GormUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctx, span := startSpan(ctx, "repository.User.FindAll")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	var users []domain.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, spanError(span, readError("list users", err))
	}
	return users, nil
}

// Update overwrites username, digest and role of an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, span := startSpan(ctx, "repository.User.Update", attribute.Int("user.id", int(user.ID)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	result := db.Model(user).Select(userColumns).Updates(user)
	if result.Error != nil {
		err := result.Error
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: %w", domain.ErrDuplicateUsername, err)
		}
		return spanError(span, writeError("update user", err))
	}
	if result.RowsAffected == 0 {
		return notFound("user", user.ID)
	}
	return nil
}

// Delete removes a user; their past sales keep a NULL user reference
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := startSpan(ctx, "repository.User.Delete", attribute.Int("user.id", int(id)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	result := db.Delete(&domain.User{}, id)
	if result.Error != nil {
		return spanError(span, writeError("delete user", result.Error))
	}
	if result.RowsAffected == 0 {
		return notFound("user", id)
	}
	return nil
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "repository.User.Count")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return 0, spanError(span, err)
	}

	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, spanError(span, readError("count users", err))
	}
	return count, nil
}
