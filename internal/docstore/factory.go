package docstore

import (
	"context"
	"fmt"

	"garden-application-api-server/config"
	"garden-application-api-server/internal/database"

	"go.uber.org/zap"
)

// Driver names accepted by Open.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open selects a Store implementation from cfg.Store.Driver:
//
//	mongo:  cfg.Mongo.URI / cfg.Mongo.DBName (default)
//	sqlite: cfg.Store.SQLitePath
//	memory: nothing persisted
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	driver := cfg.Store.Driver
	if driver == "" {
		driver = DriverMongo
	}
	switch driver {
	case DriverMongo:
		db, err := database.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureIndexes(ctx, db, logger); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return nil, err
		}
		return NewMongo(db), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Store.SQLitePath)
	case DriverMemory:
		logger.Warn("Using in-memory document store; nothing will be persisted")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
