package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hostelgrub/api/internal/auth"
	"github.com/hostelgrub/api/internal/service"
	"github.com/hostelgrub/api/internal/store"
)

// SessionManager defines the session methods needed by auth handlers.
// Satisfied by *service.SessionService; narrow interface for testability.
type SessionManager interface {
	LoginStudentByEmail(ctx context.Context, name, email string) (*service.StudentLoginResult, error)
	LoginStudentByGoogle(ctx context.Context, name, email, googleID string) (*service.StudentLoginResult, error)
	LoginAdmin(ctx context.Context, pin string) (*service.AdminLoginResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles login and logout endpoints.
type AuthHandler struct {
	sessions SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/student/email-login", h.StudentEmailLogin)
	r.Post("/auth/student/google-login", h.StudentGoogleLogin)
	r.Post("/auth/admin/login", h.AdminLogin)
	r.Post("/auth/logout", h.Logout)
}

// --- Request / Response types ---

type emailLoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type googleLoginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	GoogleID string `json:"googleId"`
}

type adminLoginRequest struct {
	Pin string `json:"pin"`
}

type studentLoginResponse struct {
	Token   string        `json:"token"`
	Student store.Student `json:"student"`
}

type adminResponse struct {
	ID string `json:"id"`
}

type adminLoginResponse struct {
	Token string        `json:"token"`
	Admin adminResponse `json:"admin"`
}

// --- Handlers ---

// StudentEmailLogin handles POST /auth/student/email-login.
func (h *AuthHandler) StudentEmailLogin(w http.ResponseWriter, r *http.Request) {
	var req emailLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.sessions.LoginStudentByEmail(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, "student email login", err)
		return
	}
	writeJSON(w, http.StatusOK, studentLoginResponse{Token: res.Token, Student: res.Student})
}

// StudentGoogleLogin handles POST /auth/student/google-login.
func (h *AuthHandler) StudentGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.sessions.LoginStudentByGoogle(r.Context(), req.Name, req.Email, req.GoogleID)
	if err != nil {
		writeError(w, "student google login", err)
		return
	}
	writeJSON(w, http.StatusOK, studentLoginResponse{Token: res.Token, Student: res.Student})
}

// AdminLogin handles POST /auth/admin/login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.sessions.LoginAdmin(r.Context(), req.Pin)
	if err != nil {
		writeError(w, "admin login", err)
		return
	}
	writeJSON(w, http.StatusOK, adminLoginResponse{Token: res.Token, Admin: adminResponse{ID: res.AdminID}})
}

// Logout handles POST /auth/logout. It succeeds with or without a token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), auth.BearerToken(r)); err != nil {
		writeError(w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}
