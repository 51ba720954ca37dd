// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/abhyas01/Qaptain-sub001/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the MongoDB indexes the app depends on: the
// unique join-secret index on classrooms, the membership listing
// indexes, and the unique folded-email index on users. It runs before
// the HTTP handler is built so uniqueness is enforced from the first
// request.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
