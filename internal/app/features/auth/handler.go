// internal/app/features/auth/handler.go

// Package auth exposes signup, login, logout, and the current-user endpoint.
package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/features/api"
	userstore "github.com/abhyas01/Qaptain-sub001/internal/app/store/users"
	sysauth "github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/inputval"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/timeouts"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

type Handler struct {
	Users    *userstore.Store
	Sessions *sysauth.SessionManager
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, sessions *sysauth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Sessions: sessions, Log: logger}
}

type signupInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100" label:"name"`
	Email    string `json:"email" validate:"required,email" label:"email"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"password"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email" label:"email"`
	Password string `json:"password" validate:"required" label:"password"`
}

// userPayload is the client-visible projection of a user.
type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toPayload(u models.User) userPayload {
	return userPayload{ID: u.ID, Name: u.Name, Email: u.Email}
}

// HandleSignup creates an account and signs the new user in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if err := api.Decode(r, &in); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		api.Error(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, in.Name, in.Email, in.Password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		api.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "signup failed", err)
		return
	}

	if err := h.Sessions.SignIn(w, r, sysauth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email}); err != nil {
		api.Internal(w, h.Log, "session write failed", err)
		return
	}
	api.JSON(w, http.StatusCreated, toPayload(u))
}

// HandleLogin verifies credentials and starts a session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := api.Decode(r, &in); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		api.Error(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		api.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "login failed", err)
		return
	}

	if err := h.Sessions.SignIn(w, r, sysauth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email}); err != nil {
		api.Internal(w, h.Log, "session write failed", err)
		return
	}
	api.JSON(w, http.StatusOK, toPayload(u))
}

// HandleLogout ends the session. Always succeeds from the client's view.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("signout failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in user's profile, re-read from storage so a
// stale session for a deleted account comes back 401.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, su.ID)
	if errors.Is(err, userstore.ErrNotFound) {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "load current user failed", err)
		return
	}
	api.JSON(w, http.StatusOK, toPayload(u))
}
