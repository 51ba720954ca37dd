// internal/app/system/indexes/indexes.go

// Package indexes reconciles the Mongo indexes the gateway layout relies on.
// EnsureAll runs at startup and is idempotent; problems are aggregated so
// startup fails fast with every issue visible at once.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll creates any missing indexes on the five collections.
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	if err := ensureClassrooms(ctx, db, log); err != nil {
		problems = append(problems, "classrooms: "+err.Error())
	}
	if err := ensureMembers(ctx, db, log); err != nil {
		problems = append(problems, "members: "+err.Error())
	}
	if err := ensureUsers(ctx, db, log); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureQuizzes(ctx, db, log); err != nil {
		problems = append(problems, "quizzes: "+err.Error())
	}
	if err := ensureScores(ctx, db, log); err != nil {
		problems = append(problems, "scores: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureClassrooms(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("classrooms"), log, []mongo.IndexModel{
		// Join secrets are unique by construction; this index makes it an
		// enforced invariant, so join's "first match by password" can never
		// observe two classrooms sharing a secret.
		{
			Keys:    bson.D{{Key: "password", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_classrooms_password"),
		},
	})
}

func ensureMembers(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("members"), log, []mongo.IndexModel{
		// The collection-group scan behind uniqueness checks and the
		// classroom-list pagination: filter (user_id, role), order by the
		// denormalized classroom creation time.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "role", Value: 1},
				{Key: "classroom_created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_members_user_role_created"),
		},
		// Per-classroom member listing.
		{
			Keys:    bson.D{{Key: "parent_path", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_members_parent_role"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("users"), log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
		},
	})
}

func ensureQuizzes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("quizzes"), log, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parent_path", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_quizzes_parent_created"),
		},
	})
}

func ensureScores(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("scores"), log, []mongo.IndexModel{
		// Per-student score history across all classrooms.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_scores_user_created"),
		},
		// Per-quiz results for the creator view.
		{
			Keys:    bson.D{{Key: "parent_path", Value: 1}, {Key: "quiz_id", Value: 1}},
			Options: options.Index().SetName("idx_scores_parent_quiz"),
		},
	})
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// ensureIndexSet creates each desired index unless one with the same key
// pattern already exists. Unlike a full reconciler it never drops indexes;
// option changes require a manual migration.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, log *zap.Logger, models []mongo.IndexModel) error {
	existing := map[string]bool{}
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx struct {
				Key bson.D `bson:"key"`
			}
			if err := cur.Decode(&idx); err != nil {
				log.Warn("failed to decode existing index",
					zap.String("collection", coll.Name()), zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = true
		}
	}

	var errs []string
	for _, m := range models {
		sig := keySig(m.Keys.(bson.D))
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if existing[sig] {
			log.Info("reusing existing index",
				zap.String("collection", coll.Name()), zap.String("keys", sig))
			continue
		}
		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("created index",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
