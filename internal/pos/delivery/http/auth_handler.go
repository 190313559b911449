package http

import (
	"net/http"

	"github.com/tair/till-pos/internal/pos/usecase/command"
)

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.commands.Login.Handle(r.Context(), command.LoginUserCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, "Login failed", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// Logout handles POST /api/auth/logout; the session's cart is discarded
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	h.sessions.Discard(principal.SessionID)

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Logged out",
	})
}
