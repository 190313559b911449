package credential

import (
	"context"
	"fmt"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/logger"
)

// Default account seeded into an empty users table
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// Validator resolves username/password pairs against stored users
type Validator struct {
	users  domain.UserRepository
	hasher Hasher
}

// NewValidator creates a validator
func NewValidator(users domain.UserRepository, hasher Hasher) *Validator {
	return &Validator{users: users, hasher: hasher}
}

// Validate returns the user when the password matches the stored digest.
// An unknown username and a wrong password both yield ok == false; err is
// only set when the store could not be read.
func (v *Validator) Validate(ctx context.Context, username, password string) (domain.User, bool, error) {
	user, found, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.User{}, false, err
	}
	if !found || !v.hasher.Verify(user.PasswordHash, password) {
		logger.WithContext(ctx).Debug().Str("username", username).Msg("Credential check failed")
		return domain.User{}, false, nil
	}
	return user, true, nil
}

// HashPassword digests password with the configured hasher
func (v *Validator) HashPassword(password string) (string, error) {
	return v.hasher.Hash(password)
}

// BootstrapDefaultAdmin inserts the default admin when no user exists.
// It reports whether a user was created.
func (v *Validator) BootstrapDefaultAdmin(ctx context.Context) (bool, error) {
	count, err := v.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	digest, err := v.hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return false, err
	}
	admin := domain.User{
		Username:     DefaultAdminUsername,
		PasswordHash: digest,
		Role:         domain.RoleAdmin,
	}
	if err := v.users.Create(ctx, &admin); err != nil {
		return false, fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.WithContext(ctx).Warn().
		Str("username", admin.Username).
		Msg("Created default admin account; change its password")
	return true, nil
}
