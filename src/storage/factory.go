package storage

import (
	"fmt"

	"finnie/src/interfaces"
	"finnie/src/logger"
	"finnie/src/models"
)

// NewChatStore picks the backend named by storage.db_type. The caller runs
// Initialize.
func NewChatStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IChatStore, error) {
	switch cfg.Storage.DBType {
	case "", "sqlite":
		return NewAsyncSQLiteDB(cfg, log.Named("SQLite"))
	case "postgres":
		return NewPostgresDB(cfg, log.Named("Postgres"))
	case "memory":
		return NewMemoryChatStore(log.Named("MemoryStore")), nil
	}
	return nil, fmt.Errorf("unknown db_type %q (sqlite, postgres, memory)", cfg.Storage.DBType)
}
