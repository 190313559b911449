package http

import (
	"net/http"

	"github.com/tair/till-pos/internal/pos/usecase/command"
)

type userRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers.Handle(r.Context())
	if err != nil {
		respondError(w, r, "Failed to list users", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    users,
	})
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.commands.CreateUser.Handle(r.Context(), command.CreateUserCommand{
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		respondError(w, r, "Failed to create user", err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "User created successfully",
		Data:    user,
	})
}

// UpdateUser handles PUT /api/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.commands.UpdateUser.Handle(r.Context(), command.UpdateUserCommand{
		ID:              id,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		respondError(w, r, "Failed to update user", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "User updated successfully",
		Data:    user,
	})
}

// DeleteUser handles DELETE /api/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user")
	if !ok {
		return
	}
	principal, _ := PrincipalFrom(r.Context())

	err := h.commands.DeleteUser.Handle(r.Context(), command.DeleteUserCommand{
		ID:       id,
		ActingID: principal.UserID,
	})
	if err != nil {
		respondError(w, r, "Failed to delete user", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "User deleted successfully",
	})
}
