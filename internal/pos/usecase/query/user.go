package query

import (
	"context"

	"github.com/tair/till-pos/internal/pos/domain"
)

// ListUsersHandler handles list users query
type ListUsersHandler struct {
	repo domain.UserRepository
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle returns every user; password digests are never serialized
func (h *ListUsersHandler) Handle(ctx context.Context) ([]domain.User, error) {
	users, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
