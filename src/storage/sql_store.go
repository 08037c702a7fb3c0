package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"

	"github.com/google/uuid"
)

// sqlChatStore holds the chat queries both SQL backends share. Queries are
// written with ? placeholders and bare table names; the dialect rewrites them.
type sqlChatStore struct {
	DB     *sql.DB
	Logger *logger.Logger

	// table qualifies a bare table name (schema prefix on Postgres)
	table func(name string) string
	// numbered switches ? to $1, $2, ...
	numbered bool

	clock *clock
}

// -----------------------------------------------------------------------------

// q fills {users}, {conversations} and {messages} and rebinds placeholders.
func (s *sqlChatStore) q(query string) string {
	for _, t := range []string{"users", "conversations", "messages"} {
		query = strings.ReplaceAll(query, "{"+t+"}", s.table(t))
	}
	if !s.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlChatStore) micros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) UpsertUser(ctx context.Context, user models.MUser) (*models.MUser, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Provider == "" {
		user.Provider = "local"
	}
	now := s.micros(s.clock.Now())

	_, err := s.DB.ExecContext(ctx, s.q(`
		INSERT INTO {users} (id, email, name, provider, created_at, last_login)
		VALUES (?, NULLIF(?, ''), ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			last_login = excluded.last_login`),
		user.ID, user.Email, user.Name, user.Provider, now, now)
	if err != nil {
		return nil, helpers.NewDatabaseError("upsert user", err)
	}

	var (
		out              models.MUser
		email            sql.NullString
		created, lastLog int64
	)
	err = s.DB.QueryRowContext(ctx, s.q(`SELECT id, email, name, provider, created_at, last_login FROM {users} WHERE id = ?`), user.ID).
		Scan(&out.ID, &email, &out.Name, &out.Provider, &created, &lastLog)
	if err != nil {
		return nil, helpers.NewDatabaseError("read user", err)
	}
	out.Email = email.String
	out.CreatedAt = fromMicros(created)
	out.LastLogin = fromMicros(lastLog)
	return &out, nil
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) CreateConversation(ctx context.Context, userID, title string) (string, error) {
	if title == "" {
		title = DefaultConversationTitle
	}
	id := uuid.NewString()
	now := s.micros(s.clock.Now())

	_, err := s.DB.ExecContext(ctx, s.q(`
		INSERT INTO {conversations} (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		id, userID, title, now, now)
	if err != nil {
		return "", helpers.NewDatabaseError("create conversation", err)
	}
	return id, nil
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) GetConversation(ctx context.Context, convID string) (*models.MConversation, error) {
	var (
		c                models.MConversation
		created, updated int64
	)
	err := s.DB.QueryRowContext(ctx, s.q(`
		SELECT c.id, c.user_id, c.title, COALESCE(c.summary, ''), c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM {messages} m WHERE m.conversation_id = c.id)
		FROM {conversations} c WHERE c.id = ?`), convID).
		Scan(&c.ID, &c.UserID, &c.Title, &c.Summary, &created, &updated, &c.MessageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", convID, helpers.ErrNotFound)
	}
	if err != nil {
		return nil, helpers.NewDatabaseError("get conversation", err)
	}
	c.CreatedAt = fromMicros(created)
	c.UpdatedAt = fromMicros(updated)
	return &c, nil
}

// -----------------------------------------------------------------------------

// ListConversations returns the user's conversations, most recently updated first.
func (s *sqlChatStore) ListConversations(ctx context.Context, userID string, limit int) ([]models.MConversation, error) {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}
	rows, err := s.DB.QueryContext(ctx, s.q(`
		SELECT c.id, c.user_id, c.title, COALESCE(c.summary, ''), c.created_at, c.updated_at, COUNT(m.id)
		FROM {conversations} c
		LEFT JOIN {messages} m ON m.conversation_id = c.id
		WHERE c.user_id = ?
		GROUP BY c.id, c.user_id, c.title, c.summary, c.created_at, c.updated_at
		ORDER BY c.updated_at DESC
		LIMIT ?`), userID, limit)
	if err != nil {
		return nil, helpers.NewDatabaseError("list conversations", err)
	}
	defer rows.Close()

	out := []models.MConversation{}
	for rows.Next() {
		var (
			c                models.MConversation
			created, updated int64
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Summary, &created, &updated, &c.MessageCount); err != nil {
			return nil, helpers.NewDatabaseError("scan conversation", err)
		}
		c.CreatedAt = fromMicros(created)
		c.UpdatedAt = fromMicros(updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) UpdateConversationTitle(ctx context.Context, convID, title string) error {
	return s.touch(ctx, "update title", `UPDATE {conversations} SET title = ?, updated_at = ? WHERE id = ?`, title, convID)
}

func (s *sqlChatStore) UpdateConversationSummary(ctx context.Context, convID, summary string) error {
	return s.touch(ctx, "update summary", `UPDATE {conversations} SET summary = ?, updated_at = ? WHERE id = ?`, summary, convID)
}

func (s *sqlChatStore) touch(ctx context.Context, op, query, value, convID string) error {
	res, err := s.DB.ExecContext(ctx, s.q(query), value, s.micros(s.clock.Now()), convID)
	if err != nil {
		return helpers.NewDatabaseError(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", convID, helpers.ErrNotFound)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) DeleteConversation(ctx context.Context, convID string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("delete conversation", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM {messages} WHERE conversation_id = ?`), convID); err != nil {
		return helpers.NewDatabaseError("delete messages", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM {conversations} WHERE id = ?`), convID); err != nil {
		return helpers.NewDatabaseError("delete conversation", err)
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

// SaveMessage stores one message and bumps the conversation's updated_at.
func (s *sqlChatStore) SaveMessage(ctx context.Context, convID, role, content, agent string) (string, error) {
	if err := validateRole(role); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := s.micros(s.clock.Now())

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", helpers.NewDatabaseError("save message", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO {messages} (id, conversation_id, role, content, agent, created_at) VALUES (?, ?, ?, ?, NULLIF(?, ''), ?)`),
		id, convID, role, content, agent, now); err != nil {
		return "", helpers.NewDatabaseError("save message", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`UPDATE {conversations} SET updated_at = ? WHERE id = ?`), now, convID); err != nil {
		return "", helpers.NewDatabaseError("touch conversation", err)
	}
	if err := tx.Commit(); err != nil {
		return "", helpers.NewDatabaseError("save message", err)
	}
	return id, nil
}

// -----------------------------------------------------------------------------

// GetMessages returns up to limit messages, oldest first.
func (s *sqlChatStore) GetMessages(ctx context.Context, convID string, limit int) ([]models.MChatMessage, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return s.messages(ctx, `
		SELECT id, conversation_id, role, content, COALESCE(agent, ''), created_at
		FROM {messages} WHERE conversation_id = ?
		ORDER BY created_at ASC
		LIMIT ?`, convID, limit)
}

func (s *sqlChatStore) messages(ctx context.Context, query string, args ...interface{}) ([]models.MChatMessage, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, helpers.NewDatabaseError("get messages", err)
	}
	defer rows.Close()

	out := []models.MChatMessage{}
	for rows.Next() {
		var (
			m       models.MChatMessage
			created int64
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Agent, &created); err != nil {
			return nil, helpers.NewDatabaseError("scan message", err)
		}
		m.CreatedAt = fromMicros(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) ConversationSummary(ctx context.Context, userID string) (string, error) {
	convs, err := s.ListConversations(ctx, userID, summaryConversations)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(convs))
	for _, c := range convs {
		var recent []models.MChatMessage
		if c.Summary == "" {
			recent, err = s.messages(ctx, `
				SELECT id, conversation_id, role, content, COALESCE(agent, ''), created_at
				FROM {messages} WHERE conversation_id = ?
				ORDER BY created_at DESC
				LIMIT ?`, c.ID, summaryMessages)
			if err != nil {
				return "", err
			}
		}
		lines = append(lines, summaryLine(c, recent))
	}
	return renderSummary(lines), nil
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) AutoTitle(ctx context.Context, convID, firstMessage string) error {
	title := TitleFromMessage(firstMessage)
	if title == "" {
		return nil
	}
	return s.UpdateConversationTitle(ctx, convID, title)
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) ClearUserHistory(ctx context.Context, userID string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("clear history", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM {messages} WHERE conversation_id IN (SELECT id FROM {conversations} WHERE user_id = ?)`), userID); err != nil {
		return helpers.NewDatabaseError("clear messages", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM {conversations} WHERE user_id = ?`), userID); err != nil {
		return helpers.NewDatabaseError("clear conversations", err)
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (s *sqlChatStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
