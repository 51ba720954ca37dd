// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/abhyas01/Qaptain-sub001/internal/app/features/auth"
	classroomsfeature "github.com/abhyas01/Qaptain-sub001/internal/app/features/classrooms"
	healthfeature "github.com/abhyas01/Qaptain-sub001/internal/app/features/health"
	quizzesfeature "github.com/abhyas01/Qaptain-sub001/internal/app/features/quizzes"
	"github.com/abhyas01/Qaptain-sub001/internal/app/store/gateway/mongogw"
	userstore "github.com/abhyas01/Qaptain-sub001/internal/app/store/users"
	"github.com/abhyas01/Qaptain-sub001/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Qaptain applies the session middleware
// globally, then mounts the JSON API: health checks, signup/login, the
// classroom endpoints, the per-classroom quiz endpoints, and the
// caller-scoped score history.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Every store goes through the document gateway so the handlers stay
	// storage-agnostic.
	gw := mongogw.New(deps.MongoDatabase, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authHandler := authfeature.NewHandler(userstore.New(gw), sessionMgr, logger)
	r.Mount("/auth", authfeature.Routes(authHandler))

	// Classrooms, with the quiz endpoints nested under each classroom.
	classroomsHandler := classroomsfeature.NewHandler(gw, logger)
	classroomsRouter := classroomsfeature.Routes(classroomsHandler)

	quizzesHandler := quizzesfeature.NewHandler(gw, logger)
	classroomsRouter.Mount("/{id}/quizzes", quizzesfeature.Routes(quizzesHandler))

	r.Mount("/classrooms", classroomsRouter)

	// Caller-scoped score history
	r.Mount("/me", quizzesfeature.MeRoutes(quizzesHandler))

	return r, nil
}
