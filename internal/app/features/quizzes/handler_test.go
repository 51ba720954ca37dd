// internal/app/features/quizzes/handler_test.go

package quizzes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/abhyas01/Qaptain-sub001/internal/app/features/quizzes"
	"github.com/abhyas01/Qaptain-sub001/internal/domain/models"
	"github.com/abhyas01/Qaptain-sub001/internal/testutil"
)

var (
	alice = testutil.User("u-alice", "Alice Ng", "alice@example.com")
	bob   = testutil.User("u-bob", "Bob Ray", "bob@example.com")
)

func setup(t *testing.T) (*quizzes.Handler, *testutil.Fixtures) {
	t.Helper()
	f := testutil.NewFixtures(t)
	c := f.Classroom("c1", "Intro to Physics", alice)
	f.Membership(c, bob, models.RoleMember)
	return quizzes.NewHandler(f.GW, zap.NewNop()), f
}

func quizBody() map[string]any {
	return map[string]any{
		"title": "Kinematics Basics",
		"questions": []map[string]any{
			{"prompt": "Unit of force?", "options": []string{"Newton", "Joule"}, "answer": 0},
			{"prompt": "g on Earth?", "options": []string{"1.6", "9.8"}, "answer": 1},
		},
	}
}

func createQuiz(t *testing.T, h *quizzes.Handler) string {
	t.Helper()
	req := testutil.SignedInRequest(t, "POST", "/classrooms/c1/quizzes", alice, quizBody())
	req = testutil.WithChiURLParam(req, "id", "c1")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.ID == "" {
		t.Fatal("created quiz has no id")
	}
	return resp.ID
}

func TestHandleCreateCreatorOnly(t *testing.T) {
	h, _ := setup(t)

	req := testutil.SignedInRequest(t, "POST", "/classrooms/c1/quizzes", bob, quizBody())
	req = testutil.WithChiURLParam(req, "id", "c1")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member create status = %d, want 403", rec.Code)
	}

	createQuiz(t, h)
}

func TestHandleCreateInvalidQuiz(t *testing.T) {
	h, _ := setup(t)

	body := quizBody()
	body["questions"] = []map[string]any{
		{"prompt": "Pick one", "options": []string{"only"}, "answer": 0},
	}
	req := testutil.SignedInRequest(t, "POST", "/classrooms/c1/quizzes", alice, body)
	req = testutil.WithChiURLParam(req, "id", "c1")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleGetStripsAnswersForMembers(t *testing.T) {
	h, _ := setup(t)
	qid := createQuiz(t, h)

	req := testutil.SignedInRequest(t, "GET", "/classrooms/c1/quizzes/"+qid, bob, nil)
	req = testutil.WithChiURLParam(req, "id", "c1")
	req = testutil.WithChiURLParam(req, "qid", qid)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var quiz struct {
		Questions []struct {
			Answer int `json:"answer"`
		} `json:"questions"`
	}
	testutil.DecodeJSON(t, rec, &quiz)
	if len(quiz.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if q.Answer != 0 {
			t.Errorf("question %d answer leaked to member: %d", i, q.Answer)
		}
	}
}

func TestHandleSubmit(t *testing.T) {
	h, _ := setup(t)
	qid := createQuiz(t, h)

	req := testutil.SignedInRequest(t, "POST", "/classrooms/c1/quizzes/"+qid+"/submissions", bob,
		map[string]any{"answers": []int{0, 0}})
	req = testutil.WithChiURLParam(req, "id", "c1")
	req = testutil.WithChiURLParam(req, "qid", qid)
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var score struct {
		Correct int `json:"correct"`
		Total   int `json:"total"`
	}
	testutil.DecodeJSON(t, rec, &score)
	if score.Correct != 1 || score.Total != 2 {
		t.Errorf("score = %d/%d, want 1/2", score.Correct, score.Total)
	}
}

func TestHandleSubmitCreatorForbidden(t *testing.T) {
	h, _ := setup(t)
	qid := createQuiz(t, h)

	req := testutil.SignedInRequest(t, "POST", "/classrooms/c1/quizzes/"+qid+"/submissions", alice,
		map[string]any{"answers": []int{0, 1}})
	req = testutil.WithChiURLParam(req, "id", "c1")
	req = testutil.WithChiURLParam(req, "qid", qid)
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("creator submit status = %d, want 403", rec.Code)
	}
}

func TestHandleScores(t *testing.T) {
	h, _ := setup(t)
	qid := createQuiz(t, h)

	submit := testutil.SignedInRequest(t, "POST", "/classrooms/c1/quizzes/"+qid+"/submissions", bob,
		map[string]any{"answers": []int{0, 1}})
	submit = testutil.WithChiURLParam(submit, "id", "c1")
	submit = testutil.WithChiURLParam(submit, "qid", qid)
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, submit)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d", rec.Code)
	}

	t.Run("creator lists scores", func(t *testing.T) {
		req := testutil.SignedInRequest(t, "GET", "/classrooms/c1/quizzes/"+qid+"/scores", alice, nil)
		req = testutil.WithChiURLParam(req, "id", "c1")
		req = testutil.WithChiURLParam(req, "qid", qid)
		rec := httptest.NewRecorder()
		h.HandleScores(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Items []struct {
				UserID  string `json:"user_id"`
				Correct int    `json:"correct"`
			} `json:"items"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if len(resp.Items) != 1 || resp.Items[0].UserID != bob.ID || resp.Items[0].Correct != 2 {
			t.Errorf("scores = %+v", resp.Items)
		}
	})

	t.Run("member cannot list scores", func(t *testing.T) {
		req := testutil.SignedInRequest(t, "GET", "/classrooms/c1/quizzes/"+qid+"/scores", bob, nil)
		req = testutil.WithChiURLParam(req, "id", "c1")
		req = testutil.WithChiURLParam(req, "qid", qid)
		rec := httptest.NewRecorder()
		h.HandleScores(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("submitter sees own history", func(t *testing.T) {
		req := testutil.SignedInRequest(t, "GET", "/me/scores", bob, nil)
		rec := httptest.NewRecorder()
		h.HandleMyScores(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Items []struct {
				QuizID string `json:"quiz_id"`
			} `json:"items"`
		}
		testutil.DecodeJSON(t, rec, &resp)
		if len(resp.Items) != 1 || resp.Items[0].QuizID != qid {
			t.Errorf("history = %+v", resp.Items)
		}
	})
}

func TestNonMemberGets404(t *testing.T) {
	h, _ := setup(t)
	createQuiz(t, h)
	stranger := testutil.User("u-eve", "Eve", "eve@example.com")

	req := testutil.SignedInRequest(t, "GET", "/classrooms/c1/quizzes", stranger, nil)
	req = testutil.WithChiURLParam(req, "id", "c1")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
