// internal/app/features/quizzes/routes.go
package quizzes

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
)

// Routes mounts the per-classroom quiz endpoints. The mount path must carry
// the {id} classroom parameter:
// r.Mount("/classrooms/{id}/quizzes", quizzes.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.HandleList)
		pr.Get("/{qid}", h.HandleGet)
		pr.Post("/{qid}/submissions", h.HandleSubmit)
		pr.Get("/{qid}/scores", h.HandleScores)
	})

	return r
}

// MeRoutes mounts the caller-scoped score history.
// Typically: r.Mount("/me", quizzes.MeRoutes(h))
func MeRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)
		pr.Get("/scores", h.HandleMyScores)
	})

	return r
}
