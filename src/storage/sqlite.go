package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finnie/src/logger"
	"finnie/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// AsyncSQLiteDB is the default chat store, one file on disk.
type AsyncSQLiteDB struct {
	sqlChatStore
	Config *models.MConfig
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		sqlChatStore: sqlChatStore{
			Logger: log,
			table:  func(name string) string { return name },
			clock:  newClock(),
		},
		Config: cfg,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBPath
	if dsn == "" {
		dsn = "finnie_data.db"
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	// single writer; SQLite serializes writes anyway and this avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}
	d.Logger.Info("SQLite chat store ready at %s", dsn)
	return nil
}

// -----------------------------------------------------------------------------

// createTables keeps existing history; timestamps are unix microseconds.
func (d *AsyncSQLiteDB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT 'local',
			created_at INTEGER NOT NULL,
			last_login INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT 'New Chat',
			summary TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			agent TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_user ON conversations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_msg_conv ON messages(conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_msg_created ON messages(created_at)`,
	}
	for _, q := range queries {
		if _, err := d.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create chat tables: %w", err)
		}
	}
	return nil
}
