package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/till-pos/internal/pos/domain"
)

// PasswordHasher produces stored password digests
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// CreateUserCommand represents the command to create a new operator
type CreateUserCommand struct {
	Username        string
	Password        string
	ConfirmPassword string
	Role            string
}

// CreateUserHandler handles user creation command
type CreateUserHandler struct {
	repo   domain.UserRepository
	hasher PasswordHasher
}

// NewCreateUserHandler creates a new create user handler
func NewCreateUserHandler(repo domain.UserRepository, hasher PasswordHasher) *CreateUserHandler {
	return &CreateUserHandler{repo: repo, hasher: hasher}
}

// Handle executes the create user command
func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" {
		return nil, domain.Invalid("username is required")
	}
	if cmd.Password == "" {
		return nil, domain.Invalid("password is required")
	}
	if cmd.Password != cmd.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	role := cmd.Role
	if role == "" {
		return nil, domain.Invalid("role is required")
	}
	if !domain.ValidRole(role) {
		return nil, domain.Invalid("unknown role %q", cmd.Role)
	}

	_, exists, err := h.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, username)
	}

	digest, err := h.hasher.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Username: username, PasswordHash: digest, Role: role}
	if err := h.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserCommand changes a user's name and role, and the password when
// one is given
type UpdateUserCommand struct {
	ID              uint
	Username        string
	Password        string
	ConfirmPassword string
	Role            string
}

// UpdateUserHandler handles user update command
type UpdateUserHandler struct {
	repo   domain.UserRepository
	hasher PasswordHasher
}

// NewUpdateUserHandler creates a new update user handler
func NewUpdateUserHandler(repo domain.UserRepository, hasher PasswordHasher) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo, hasher: hasher}
}

// Handle executes the update user command
func (h *UpdateUserHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error) {
	if cmd.ID == 0 {
		return nil, domain.Invalid("invalid user id")
	}
	username := strings.TrimSpace(cmd.Username)
	if username == "" {
		return nil, domain.Invalid("username is required")
	}
	if cmd.Password != cmd.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if cmd.Role != "" && !domain.ValidRole(cmd.Role) {
		return nil, domain.Invalid("unknown role %q", cmd.Role)
	}

	user, found, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %d: %w", cmd.ID, domain.ErrNotFound)
	}

	if username != user.Username {
		other, taken, err := h.repo.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken && other.ID != user.ID {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, username)
		}
	}

	user.Username = username
	if cmd.Role != "" {
		user.Role = cmd.Role
	}
	if cmd.Password != "" {
		digest, err := h.hasher.HashPassword(cmd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = digest
	}

	if err := h.repo.Update(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUserCommand deletes a user on behalf of the acting user
type DeleteUserCommand struct {
	ID       uint
	ActingID uint
}

// DeleteUserHandler handles user deletion command
type DeleteUserHandler struct {
	repo domain.UserRepository
}

// NewDeleteUserHandler creates a new delete user handler
func NewDeleteUserHandler(repo domain.UserRepository) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo}
}

// Handle executes the delete user command. Sales made by the user are kept
// without an operator.
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if cmd.ID == 0 {
		return domain.Invalid("invalid user id")
	}
	if cmd.ID == cmd.ActingID {
		return domain.ErrSelfDeletion
	}
	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", cmd.ID, err)
	}
	return nil
}
