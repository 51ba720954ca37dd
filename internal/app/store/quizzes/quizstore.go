// internal/app/store/quizzes/quizstore.go

// Package quizstore persists quizzes and score records under a classroom:
// classrooms/{cid}/quizzes/{qid} and classrooms/{cid}/scores/{sid}. Callers
// are expected to have checked classroom membership already; nothing here
// re-verifies it.
package quizstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/normalize"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
)

var (
	// ErrInvalidQuiz is returned when a quiz fails structural validation.
	ErrInvalidQuiz = errors.New("quizstore: invalid quiz")

	// ErrNotFound is returned when no quiz exists at the requested path.
	ErrNotFound = errors.New("quizstore: quiz not found")

	// ErrAnswerCount is returned by Grade when the submission does not have
	// one answer per question.
	ErrAnswerCount = errors.New("quizstore: answer count mismatch")
)

const (
	quizzesGroup = "quizzes"
	scoresGroup  = "scores"
)

// strict strips all markup from user-authored quiz text; quizzes are plain
// text end to end.
var strict = bluemonday.StrictPolicy()

type Store struct {
	gw gateway.Gateway
}

func New(gw gateway.Gateway) *Store {
	return &Store{gw: gw}
}

func quizzesColl(classroomID string) string {
	return "classrooms/" + classroomID + "/" + quizzesGroup
}

func scoresColl(classroomID string) string {
	return "classrooms/" + classroomID + "/" + scoresGroup
}

// Create validates, sanitizes, and stores a quiz authored by the named user.
func (s *Store) Create(ctx context.Context, classroomID string, authorID, authorName string, q models.Quiz) (models.Quiz, error) {
	q.Title = strict.Sanitize(normalize.QueryParam(q.Title))
	if q.Title == "" {
		return models.Quiz{}, fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return models.Quiz{}, fmt.Errorf("%w: at least one question", ErrInvalidQuiz)
	}
	for i := range q.Questions {
		question := &q.Questions[i]
		question.Prompt = strict.Sanitize(normalize.QueryParam(question.Prompt))
		if question.Prompt == "" {
			return models.Quiz{}, fmt.Errorf("%w: question %d has no prompt", ErrInvalidQuiz, i+1)
		}
		if len(question.Options) < 2 {
			return models.Quiz{}, fmt.Errorf("%w: question %d needs at least two options", ErrInvalidQuiz, i+1)
		}
		for j, opt := range question.Options {
			opt = strict.Sanitize(normalize.QueryParam(opt))
			if opt == "" {
				return models.Quiz{}, fmt.Errorf("%w: question %d option %d is empty", ErrInvalidQuiz, i+1, j+1)
			}
			question.Options[j] = opt
		}
		if question.Answer < 0 || question.Answer >= len(question.Options) {
			return models.Quiz{}, fmt.Errorf("%w: question %d answer out of range", ErrInvalidQuiz, i+1)
		}
	}

	q.CreatedByID = authorID
	q.CreatedByName = authorName

	questions := make([]map[string]any, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = map[string]any{
			"prompt":  question.Prompt,
			"options": question.Options,
			"answer":  question.Answer,
		}
	}
	id, err := s.gw.Create(ctx, quizzesColl(classroomID), map[string]any{
		"title":           q.Title,
		"questions":       questions,
		"created_by_id":   q.CreatedByID,
		"created_by_name": q.CreatedByName,
		"created_at":      gateway.ServerTimestamp,
	})
	if err != nil {
		return models.Quiz{}, fmt.Errorf("quizstore: create: %w", err)
	}

	doc, err := s.gw.Get(ctx, quizzesColl(classroomID)+"/"+id)
	if err != nil {
		return models.Quiz{}, fmt.Errorf("quizstore: read back %s: %w", id, err)
	}
	if err := doc.Decode(&q); err != nil {
		return models.Quiz{}, err
	}
	q.ID = id
	return q, nil
}

// List returns a classroom's quizzes, newest first, answers included.
// Callers serving members must strip answers first (see StripAnswers).
func (s *Store) List(ctx context.Context, classroomID string) ([]models.Quiz, error) {
	docs, err := s.gw.Query(ctx, quizzesColl(classroomID), "", nil, gateway.Options{
		OrderBy:    "created_at",
		Descending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("quizstore: list %s: %w", classroomID, err)
	}
	out := make([]models.Quiz, 0, len(docs))
	for _, doc := range docs {
		var q models.Quiz
		if err := doc.Decode(&q); err != nil {
			return nil, err
		}
		q.ID = doc.ID
		out = append(out, q)
	}
	return out, nil
}

// Get loads one quiz.
func (s *Store) Get(ctx context.Context, classroomID, quizID string) (models.Quiz, error) {
	doc, err := s.gw.Get(ctx, quizzesColl(classroomID)+"/"+quizID)
	if errors.Is(err, gateway.ErrNotFound) {
		return models.Quiz{}, ErrNotFound
	}
	if err != nil {
		return models.Quiz{}, fmt.Errorf("quizstore: get %s: %w", quizID, err)
	}
	var q models.Quiz
	if err := doc.Decode(&q); err != nil {
		return models.Quiz{}, err
	}
	q.ID = doc.ID
	return q, nil
}

// StripAnswers returns a copy of q with every answer index zeroed, for
// serving to a member about to take the quiz.
func StripAnswers(q models.Quiz) models.Quiz {
	stripped := make([]models.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Answer = 0
		stripped[i] = question
	}
	q.Questions = stripped
	return q
}

// Grade scores a submission against the quiz and records the result. The
// returned Score carries the store-assigned id and timestamp.
func (s *Store) Grade(ctx context.Context, classroomID string, q models.Quiz, userID, userName string, answers []int) (models.Score, error) {
	if len(answers) != len(q.Questions) {
		return models.Score{}, ErrAnswerCount
	}
	correct := 0
	for i, question := range q.Questions {
		if answers[i] == question.Answer {
			correct++
		}
	}

	id, err := s.gw.Create(ctx, scoresColl(classroomID), map[string]any{
		"user_id":    userID,
		"user_name":  userName,
		"quiz_id":    q.ID,
		"quiz_title": q.Title,
		"correct":    correct,
		"total":      len(q.Questions),
		"created_at": gateway.ServerTimestamp,
	})
	if err != nil {
		return models.Score{}, fmt.Errorf("quizstore: record score: %w", err)
	}
	doc, err := s.gw.Get(ctx, scoresColl(classroomID)+"/"+id)
	if err != nil {
		return models.Score{}, fmt.Errorf("quizstore: read back score %s: %w", id, err)
	}
	var sc models.Score
	if err := doc.Decode(&sc); err != nil {
		return models.Score{}, err
	}
	sc.ID = id
	return sc, nil
}

// ScoresForQuiz lists every submission for one quiz, newest first.
func (s *Store) ScoresForQuiz(ctx context.Context, classroomID, quizID string) ([]models.Score, error) {
	docs, err := s.gw.Query(ctx, scoresColl(classroomID), "quiz_id", quizID, gateway.Options{
		OrderBy:    "created_at",
		Descending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("quizstore: scores for quiz %s: %w", quizID, err)
	}
	return decodeScores(docs)
}

// HistoryForUser lists a user's scores across every classroom, newest
// first, via a collection-group scan of the scores sub-collections.
func (s *Store) HistoryForUser(ctx context.Context, userID string, limit int) ([]models.Score, error) {
	docs, err := s.gw.QueryGroup(ctx, scoresGroup, []gateway.Filter{
		{Field: "user_id", Value: userID},
	}, gateway.Options{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("quizstore: history for %s: %w", userID, err)
	}
	return decodeScores(docs)
}

func decodeScores(docs []gateway.Doc) ([]models.Score, error) {
	out := make([]models.Score, 0, len(docs))
	for _, doc := range docs {
		var sc models.Score
		if err := doc.Decode(&sc); err != nil {
			return nil, err
		}
		sc.ID = doc.ID
		out = append(out, sc)
	}
	return out, nil
}
