// internal/app/features/classrooms/routes.go
package classrooms

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
)

// Routes mounts the classroom endpoints.
// Typically: r.Mount("/classrooms", classrooms.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.HandleList)
		pr.Post("/join", h.HandleJoin)

		pr.Get("/{id}", h.HandleGet)
		pr.Patch("/{id}/name", h.HandleRename)
		pr.Post("/{id}/password", h.HandleRegeneratePassword)
	})

	return r
}
