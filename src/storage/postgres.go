package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finnie/src/logger"
	"finnie/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresDB keeps chat history in a schema named after the app.
type PostgresDB struct {
	sqlChatStore
	Config *models.MConfig
	Schema string
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	name := cfg.Name
	if name == "" {
		// Fall back to the executable name for the schema
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable name: %w", err)
		}
		name = filepath.Base(exe)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	schema := schemaName(name)

	return &PostgresDB{
		sqlChatStore: sqlChatStore{
			Logger:   log,
			table:    func(t string) string { return fmt.Sprintf(`"%s"."%s"`, schema, t) },
			numbered: true,
			clock:    newClock(),
		},
		Config: cfg,
		Schema: schema,
	}, nil
}

// schemaName keeps letters, digits and underscores so the name can be quoted safely.
func schemaName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "finnie"
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS {users} (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT 'local',
			created_at BIGINT NOT NULL,
			last_login BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS {conversations} (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT 'New Chat',
			summary TEXT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS {messages} (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			agent TEXT,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conv_user ON {conversations} (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_msg_conv ON {messages} (conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_msg_created ON {messages} (created_at)`,
	}
	for _, q := range queries {
		if _, err := d.DB.ExecContext(ctx, d.q(q)); err != nil {
			return fmt.Errorf("failed to create chat tables in %s: %w", d.Schema, err)
		}
	}
	return nil
}
