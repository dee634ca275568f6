package database

import (
	"context"

	"assistante-suite/utils/contentstore"
	mongoManager "assistante-suite/utils/database/mongo"
	dbManager "assistante-suite/utils/database/postgresql"
	redisManager "assistante-suite/utils/database/redis"
	"assistante-suite/utils/jsonform"
)

// DBManager bundles the stores the HTTP layer reads from. Pages is whichever
// page backend the configuration selected, already wrapped by the Redis
// cache when Redis is available.
type DBManager struct {
	DB    *dbManager.Client
	Redis *redisManager.RedisManager
	Mongo *mongoManager.MongoDBManager

	Pages        contentstore.PageStore
	EditorStates jsonform.StateRepository
}

func NewDBManager(db *dbManager.Client, redis *redisManager.RedisManager, mongo *mongoManager.MongoDBManager, pages contentstore.PageStore, editorStates jsonform.StateRepository) *DBManager {
	return &DBManager{
		DB:           db,
		Redis:        redis,
		Mongo:        mongo,
		Pages:        pages,
		EditorStates: editorStates,
	}
}

// Ping reports the reachability of every configured backend by name.
func (m *DBManager) Ping(ctx context.Context) map[string]error {
	out := make(map[string]error, 3)
	if m.DB != nil {
		out["postgres"] = m.DB.Ping(ctx)
	}
	if m.Redis != nil {
		out["redis"] = m.Redis.Ping(ctx)
	}
	if m.Mongo != nil {
		out["mongo"] = m.Mongo.Ping(ctx)
	}
	return out
}
