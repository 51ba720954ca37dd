// internal/app/features/classrooms/handler.go

// Package classrooms exposes classroom lifecycle and listing over HTTP.
package classrooms

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/classroom"
	"github.com/abhyas01/Qaptain-sub001/internal/app/features/api"
	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	sysauth "github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/inputval"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/normalize"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/timeouts"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	Manager *classroom.Manager
	GW      gateway.Gateway
	Log     *zap.Logger
}

func NewHandler(gw gateway.Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Manager: classroom.NewManager(gw, logger),
		GW:      gw,
		Log:     logger,
	}
}

func profileOf(su *sysauth.SessionUser) classroom.Profile {
	return classroom.Profile{UserID: su.ID, Name: su.Name, Email: su.Email}
}

type nameInput struct {
	Name string `json:"name" validate:"required,min=8,max=150" label:"name"`
}

type joinInput struct {
	Password string `json:"password" validate:"required" label:"password"`
}

type classroomPayload struct {
	models.Classroom
	Role     string `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
}

// withSecret includes the join secret; only the creator ever sees it.
func withSecret(c models.Classroom, role string) classroomPayload {
	p := classroomPayload{Classroom: c, Role: role}
	if role == models.RoleCreator {
		p.Password = c.Password
	}
	return p
}

// HandleCreate handles POST /classrooms.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in nameInput
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

	c, err := h.Manager.Create(ctx, profileOf(su), in.Name)
	if err != nil {
		h.writeClassroomError(w, "create classroom failed", err)
		return
	}
	api.JSON(w, http.StatusCreated, withSecret(c, models.RoleCreator))
}

// HandleList handles GET /classrooms?role=&page_size=&cursor=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	role := normalize.Role(r.URL.Query().Get("role"))
	if role != "" && !models.ValidRole(role) {
		api.Error(w, http.StatusBadRequest, "role must be creator or member")
		return
	}

	pageSize := defaultPageSize
	if raw := normalize.QueryParam(r.URL.Query().Get("page_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			api.Error(w, http.StatusBadRequest, "page_size out of range")
			return
		}
		pageSize = n
	}

	after, err := decodeCursor(normalize.QueryParam(r.URL.Query().Get("cursor")))
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pager := classroom.NewPager(h.GW, h.Log, su.ID, role, pageSize)
	pager.SetCursor(after)
	items, err := pager.Fetch(ctx)
	if err != nil {
		api.Internal(w, h.Log, "list classrooms failed", err)
		return
	}

	resp := struct {
		Items      []classroom.ClassroomListItem `json:"items"`
		HasMore    bool                          `json:"has_more"`
		NextCursor string                        `json:"next_cursor,omitempty"`
	}{
		Items:   items,
		HasMore: pager.HasMore(),
	}
	if resp.HasMore {
		resp.NextCursor = encodeCursor(pager.Cursor())
	}
	// Members never see join secrets in listings.
	for i := range resp.Items {
		resp.Items[i].Classroom.Password = ""
	}
	api.JSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /classrooms/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, role, err := h.Manager.Get(ctx, chi.URLParam(r, "id"), su.ID)
	if err != nil {
		h.writeClassroomError(w, "get classroom failed", err)
		return
	}
	api.JSON(w, http.StatusOK, withSecret(c, role))
}

// HandleRename handles PATCH /classrooms/{id}/name.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in nameInput
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

	if err := h.Manager.Rename(ctx, profileOf(su), chi.URLParam(r, "id"), in.Name); err != nil {
		h.writeClassroomError(w, "rename classroom failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegeneratePassword handles POST /classrooms/{id}/password.
func (h *Handler) HandleRegeneratePassword(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	secret, err := h.Manager.RegeneratePassword(ctx, profileOf(su), chi.URLParam(r, "id"))
	if err != nil {
		h.writeClassroomError(w, "regenerate password failed", err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"password": secret})
}

// HandleJoin handles POST /classrooms/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in joinInput
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

	c, err := h.Manager.Join(ctx, profileOf(su), in.Password)
	if err != nil {
		h.writeClassroomError(w, "join classroom failed", err)
		return
	}
	api.JSON(w, http.StatusOK, withSecret(c, models.RoleMember))
}

// writeClassroomError maps the classroom package's sentinels onto HTTP
// statuses; anything unmapped is a storage failure and stays opaque.
func (h *Handler) writeClassroomError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, classroom.ErrInvalidName):
		api.Error(w, http.StatusBadRequest, "classroom name must be 8 to 150 characters")
	case errors.Is(err, classroom.ErrDuplicateName):
		api.Error(w, http.StatusConflict, "you already have a classroom with this name")
	case errors.Is(err, classroom.ErrNotFound):
		api.Error(w, http.StatusNotFound, "classroom not found")
	case errors.Is(err, classroom.ErrAlreadyMember):
		api.Error(w, http.StatusConflict, "you are already a member of this classroom")
	case errors.Is(err, classroom.ErrWrongRole):
		api.Error(w, http.StatusForbidden, "only the classroom creator can do this")
	default:
		api.Internal(w, h.Log, op, err)
	}
}
