package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/utils"

	_ "modernc.org/sqlite"
)

// SQLKnowledgeBase answers concept, company and sector lookups from SQLite
// tables. Every failure is a miss; generation simply goes without context.
type SQLKnowledgeBase struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLKnowledgeBase(cfg *models.MConfig, log *logger.Logger) *SQLKnowledgeBase {
	return &SQLKnowledgeBase{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Initialize opens the database, creates the tables and seeds them once.
// It shares the chat database file when storage is SQLite, otherwise it
// lives in memory.
func (k *SQLKnowledgeBase) Initialize(ctx context.Context) error {
	dsn := ":memory:"
	if k.Config.Storage.DBType == "sqlite" && k.Config.Storage.DBPath != "" {
		dsn = k.Config.Storage.DBPath
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	if dsn == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	k.DB = db

	if err := k.createTables(ctx); err != nil {
		return err
	}
	if k.Config.Knowledge.Seed {
		return k.seed(ctx)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (k *SQLKnowledgeBase) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS concepts (
			name TEXT PRIMARY KEY,
			aliases TEXT NOT NULL DEFAULT '',
			definition TEXT NOT NULL,
			key_takeaway TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT 'beginner',
			category TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS concept_relations (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			PRIMARY KEY (source, target)
		)`,
		`CREATE TABLE IF NOT EXISTS sectors (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			etf TEXT NOT NULL DEFAULT '',
			etf_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS companies (
			ticker TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sector TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			market_cap REAL,
			pe_ratio REAL,
			dividend_yield REAL,
			fifty_two_high REAL,
			fifty_two_low REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_companies_sector ON companies(sector)`,
	}
	for _, q := range queries {
		if _, err := k.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create knowledge tables: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (k *SQLKnowledgeBase) seed(ctx context.Context) error {
	var n int
	if err := k.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM concepts").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := k.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range seedConcepts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (name, aliases, definition, key_takeaway, difficulty, category) VALUES (?, ?, ?, ?, ?, ?)`,
			c.Name, c.Aliases, c.Definition, c.KeyTakeaway, c.Difficulty, c.Category); err != nil {
			return err
		}
	}
	for source, targets := range seedRelations {
		for _, target := range targets {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO concept_relations (source, target) VALUES (?, ?)`, source, target); err != nil {
				return err
			}
		}
	}
	for _, s := range seedSectors {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO sectors (name, description, etf, etf_name) VALUES (?, ?, ?, ?)`,
			s.Name, s.Description, s.ETF, s.ETFName); err != nil {
			return err
		}
	}
	for _, c := range seedCompanies {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO companies (ticker, name, sector, industry, market_cap, pe_ratio, dividend_yield) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Ticker, c.Name, c.Sector, c.Industry, c.MarketCap, c.PERatio, c.DividendYield); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	k.Logger.Info("Seeded knowledge base: %d concepts, %d sectors, %d companies",
		len(seedConcepts), len(seedSectors), len(seedCompanies))
	return nil
}

// -----------------------------------------------------------------------------

// LookupConcept matches the topic against names and aliases, either way round,
// so "p/e" and "what does the p/e ratio mean" both find the P/E Ratio.
func (k *SQLKnowledgeBase) LookupConcept(ctx context.Context, topic string) (string, bool) {
	if k.DB == nil {
		return "", false
	}
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return "", false
	}

	var name, definition, takeaway, difficulty string
	err := k.DB.QueryRowContext(ctx, `
		SELECT name, definition, key_takeaway, difficulty FROM concepts
		WHERE instr(lower(name), ?1) > 0
		   OR instr(lower(aliases), ?1) > 0
		   OR instr(?1, lower(name)) > 0
		ORDER BY CASE WHEN lower(name) = ?1 THEN 0 ELSE 1 END, length(name) DESC
		LIMIT 1`, topic).Scan(&name, &definition, &takeaway, &difficulty)
	if err != nil {
		k.miss("concept", topic, err)
		return "", false
	}

	lines := []string{
		fmt.Sprintf("**%s** (Difficulty: %s)", name, difficulty),
		"Definition: " + definition,
		"Key Takeaway: " + takeaway,
	}
	if related := k.column(ctx, `SELECT target FROM concept_relations WHERE source = ? ORDER BY target LIMIT 5`, name); len(related) > 0 {
		lines = append(lines, "Related concepts: "+strings.Join(related, ", "))
	}
	return strings.Join(lines, "\n"), true
}

// -----------------------------------------------------------------------------

func (k *SQLKnowledgeBase) LookupCompany(ctx context.Context, ticker string) (string, bool) {
	if k.DB == nil {
		return "", false
	}
	ticker = utils.NormalizeTicker(ticker)

	var (
		name, sector, industry       string
		marketCap, pe, high52, low52 sql.NullFloat64
	)
	err := k.DB.QueryRowContext(ctx, `
		SELECT name, sector, industry, market_cap, pe_ratio, fifty_two_high, fifty_two_low
		FROM companies WHERE ticker = ?`, ticker).Scan(&name, &sector, &industry, &marketCap, &pe, &high52, &low52)
	if err != nil {
		k.miss("company", ticker, err)
		return "", false
	}

	lines := []string{
		fmt.Sprintf("**%s** (%s)", name, ticker),
		fmt.Sprintf("Sector: %s | Industry: %s", orNA(sector), orNA(industry)),
	}
	if marketCap.Valid && marketCap.Float64 > 0 {
		lines = append(lines, fmt.Sprintf("Market Cap: $%.1fB", marketCap.Float64/1e9))
	}
	if pe.Valid && pe.Float64 > 0 {
		lines = append(lines, fmt.Sprintf("P/E Ratio: %.1f", pe.Float64))
	}
	if high52.Valid && low52.Valid && high52.Float64 > 0 && low52.Float64 > 0 {
		lines = append(lines, fmt.Sprintf("52-Week Range: $%.2f – $%.2f", low52.Float64, high52.Float64))
	}
	if sector != "" {
		if etfs := k.sectorETFs(ctx, sector); etfs != "" {
			lines = append(lines, "Sector ETFs: "+etfs)
		}
		peers := k.column(ctx, `SELECT ticker FROM companies WHERE sector = ? AND ticker <> ? ORDER BY market_cap DESC LIMIT 5`, sector, ticker)
		if len(peers) > 0 {
			lines = append(lines, "Sector peers: "+strings.Join(peers, ", "))
		}
	}
	return strings.Join(lines, "\n"), true
}

// -----------------------------------------------------------------------------

func (k *SQLKnowledgeBase) LookupSector(ctx context.Context, sectorName string) (string, bool) {
	if k.DB == nil {
		return "", false
	}
	sectorName = strings.ToLower(strings.TrimSpace(sectorName))
	if sectorName == "" {
		return "", false
	}

	var name, description string
	err := k.DB.QueryRowContext(ctx,
		`SELECT name, description FROM sectors WHERE instr(lower(name), ?) > 0 ORDER BY name LIMIT 1`,
		sectorName).Scan(&name, &description)
	if err != nil {
		k.miss("sector", sectorName, err)
		return "", false
	}

	lines := []string{
		fmt.Sprintf("**%s** Sector", name),
		"Description: " + orNA(description),
	}

	rows := k.pairs(ctx, `SELECT ticker, name FROM companies WHERE sector = ? ORDER BY market_cap DESC LIMIT 10`, name)
	if len(rows) > 0 {
		lines = append(lines, "Top companies: "+strings.Join(rows, ", "))
	}
	if etfs := k.sectorETFs(ctx, name); etfs != "" {
		lines = append(lines, "Sector ETFs: "+etfs)
	}
	return strings.Join(lines, "\n"), true
}

// -----------------------------------------------------------------------------

func (k *SQLKnowledgeBase) Close() error {
	if k.DB != nil {
		return k.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

func (k *SQLKnowledgeBase) sectorETFs(ctx context.Context, sector string) string {
	return strings.Join(k.pairs(ctx, `SELECT etf, etf_name FROM sectors WHERE name = ? AND etf <> ''`, sector), ", ")
}

// column runs a one-column query; errors read as no rows.
func (k *SQLKnowledgeBase) column(ctx context.Context, query string, args ...interface{}) []string {
	rows, err := k.DB.QueryContext(ctx, query, args...)
	if err != nil {
		k.Logger.Debug("Knowledge query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// pairs renders two-column rows as "A (B)".
func (k *SQLKnowledgeBase) pairs(ctx context.Context, query string, args ...interface{}) []string {
	rows, err := k.DB.QueryContext(ctx, query, args...)
	if err != nil {
		k.Logger.Debug("Knowledge query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err == nil {
			out = append(out, fmt.Sprintf("%s (%s)", a, b))
		}
	}
	return out
}

func (k *SQLKnowledgeBase) miss(kind, key string, err error) {
	if !errors.Is(err, sql.ErrNoRows) {
		k.Logger.Debug("Knowledge %s lookup for %q failed: %v", kind, key, err)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
