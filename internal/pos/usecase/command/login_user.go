package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/auth"
)

// CredentialValidator resolves a username/password pair to a user
type CredentialValidator interface {
	Validate(ctx context.Context, username, password string) (domain.User, bool, error)
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	GenerateToken(userID uint, username, role string) (string, *auth.Claims, error)
}

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	Username string
	Password string
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token     string      `json:"token"`
	SessionID string      `json:"session_id"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	validator CredentialValidator
	tokens    TokenIssuer
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(validator CredentialValidator, tokens TokenIssuer) *LoginUserHandler {
	return &LoginUserHandler{validator: validator, tokens: tokens}
}

// Handle executes the login user command
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginResponse, error) {
	if cmd.Username == "" {
		return nil, domain.Invalid("username is required")
	}
	if cmd.Password == "" {
		return nil, domain.Invalid("password is required")
	}

	user, ok, err := h.validator.Validate(ctx, cmd.Username, cmd.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}
