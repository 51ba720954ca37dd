// internal/app/features/quizzes/handler.go

// Package quizzes exposes quiz authoring, taking, and score listings under
// a classroom, plus the cross-classroom score history endpoint.
package quizzes

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/classroom"
	"github.com/abhyas01/Qaptain-sub001/internal/app/features/api"
	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	quizstore "github.com/abhyas01/Qaptain-sub001/internal/app/store/quizzes"
	sysauth "github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/timeouts"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

// historyLimit caps the /me/scores listing.
const historyLimit = 100

type Handler struct {
	Quizzes    *quizstore.Store
	Classrooms *classroom.Manager
	Log        *zap.Logger
}

func NewHandler(gw gateway.Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Quizzes:    quizstore.New(gw),
		Classrooms: classroom.NewManager(gw, logger),
		Log:        logger,
	}
}

type quizInput struct {
	Title     string `json:"title"`
	Questions []struct {
		Prompt  string   `json:"prompt"`
		Options []string `json:"options"`
		Answer  int      `json:"answer"`
	} `json:"questions"`
}

type submissionInput struct {
	Answers []int `json:"answers"`
}

// role resolves the caller's role in the classroom, writing the error
// response itself when access is denied. ok is false when a response has
// already been written.
func (h *Handler) role(ctx context.Context, w http.ResponseWriter, r *http.Request) (userID, userName, classroomID, role string, ok bool) {
	su, found := sysauth.CurrentUser(r)
	if !found {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", "", "", "", false
	}
	classroomID = chi.URLParam(r, "id")
	_, role, err := h.Classrooms.Get(ctx, classroomID, su.ID)
	if errors.Is(err, classroom.ErrNotFound) {
		api.Error(w, http.StatusNotFound, "classroom not found")
		return "", "", "", "", false
	}
	if err != nil {
		api.Internal(w, h.Log, "resolve classroom role failed", err)
		return "", "", "", "", false
	}
	return su.ID, su.Name, classroomID, role, true
}

// HandleCreate handles POST /classrooms/{id}/quizzes. Creator only.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, userName, classroomID, role, ok := h.role(ctx, w, r)
	if !ok {
		return
	}
	if role != models.RoleCreator {
		api.Error(w, http.StatusForbidden, "only the classroom creator can author quizzes")
		return
	}

	var in quizInput
	if err := api.Decode(r, &in); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q := models.Quiz{Title: in.Title}
	for _, question := range in.Questions {
		q.Questions = append(q.Questions, models.Question{
			Prompt:  question.Prompt,
			Options: question.Options,
			Answer:  question.Answer,
		})
	}

	created, err := h.Quizzes.Create(ctx, classroomID, userID, userName, q)
	if errors.Is(err, quizstore.ErrInvalidQuiz) {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "create quiz failed", err)
		return
	}
	api.JSON(w, http.StatusCreated, created)
}

// HandleList handles GET /classrooms/{id}/quizzes. Members see quizzes with
// answers stripped; the creator sees them whole.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, _, classroomID, role, ok := h.role(ctx, w, r)
	if !ok {
		return
	}

	quizzes, err := h.Quizzes.List(ctx, classroomID)
	if err != nil {
		api.Internal(w, h.Log, "list quizzes failed", err)
		return
	}
	if role != models.RoleCreator {
		for i, q := range quizzes {
			quizzes[i] = quizstore.StripAnswers(q)
		}
	}
	api.JSON(w, http.StatusOK, map[string]any{"items": quizzes})
}

// HandleGet handles GET /classrooms/{id}/quizzes/{qid}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, _, classroomID, role, ok := h.role(ctx, w, r)
	if !ok {
		return
	}

	q, err := h.Quizzes.Get(ctx, classroomID, chi.URLParam(r, "qid"))
	if errors.Is(err, quizstore.ErrNotFound) {
		api.Error(w, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "get quiz failed", err)
		return
	}
	if role != models.RoleCreator {
		q = quizstore.StripAnswers(q)
	}
	api.JSON(w, http.StatusOK, q)
}

// HandleSubmit handles POST /classrooms/{id}/quizzes/{qid}/submissions.
// Members only; the creator already has the answer key.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, userName, classroomID, role, ok := h.role(ctx, w, r)
	if !ok {
		return
	}
	if role != models.RoleMember {
		api.Error(w, http.StatusForbidden, "only members can submit answers")
		return
	}

	var in submissionInput
	if err := api.Decode(r, &in); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := h.Quizzes.Get(ctx, classroomID, chi.URLParam(r, "qid"))
	if errors.Is(err, quizstore.ErrNotFound) {
		api.Error(w, http.StatusNotFound, "quiz not found")
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "get quiz failed", err)
		return
	}

	score, err := h.Quizzes.Grade(ctx, classroomID, q, userID, userName, in.Answers)
	if errors.Is(err, quizstore.ErrAnswerCount) {
		api.Error(w, http.StatusBadRequest, "submission must answer every question exactly once")
		return
	}
	if err != nil {
		api.Internal(w, h.Log, "grade submission failed", err)
		return
	}
	api.JSON(w, http.StatusCreated, score)
}

// HandleScores handles GET /classrooms/{id}/quizzes/{qid}/scores. Creator
// only.
func (h *Handler) HandleScores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, _, classroomID, role, ok := h.role(ctx, w, r)
	if !ok {
		return
	}
	if role != models.RoleCreator {
		api.Error(w, http.StatusForbidden, "only the classroom creator can view all scores")
		return
	}

	scores, err := h.Quizzes.ScoresForQuiz(ctx, classroomID, chi.URLParam(r, "qid"))
	if err != nil {
		api.Internal(w, h.Log, "list scores failed", err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"items": scores})
}

// HandleMyScores handles GET /me/scores: the caller's submissions across
// every classroom, newest first.
func (h *Handler) HandleMyScores(w http.ResponseWriter, r *http.Request) {
	su, found := sysauth.CurrentUser(r)
	if !found {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scores, err := h.Quizzes.HistoryForUser(ctx, su.ID, historyLimit)
	if err != nil {
		api.Internal(w, h.Log, "score history failed", err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]any{"items": scores})
}
