package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"finnie/src/helpers"
	"finnie/src/logger"
	"finnie/src/models"
	"finnie/src/utils"

	"github.com/google/uuid"
)

// MemoryChatStore keeps history in process: one ring buffer of messages per
// conversation, so long chats drop their oldest turns.
type MemoryChatStore struct {
	Messages *utils.MemoryManager[models.MChatMessage]
	Logger   *logger.Logger

	mu            sync.RWMutex
	users         map[string]models.MUser
	conversations map[string]*models.MConversation
	clock         *clock
}

const (
	memoryMaxMB             = 256
	memoryMessagesPerThread = 500
)

// -----------------------------------------------------------------------------

func NewMemoryChatStore(log *logger.Logger) *MemoryChatStore {
	return &MemoryChatStore{
		Messages:      utils.NewMemoryManager[models.MChatMessage](memoryMaxMB, memoryMessagesPerThread, log.Named("ChatMemory")),
		Logger:        log,
		users:         make(map[string]models.MUser),
		conversations: make(map[string]*models.MConversation),
		clock:         newClock(),
	}
}

func (m *MemoryChatStore) Initialize(ctx context.Context) error {
	m.Logger.Info("In-memory chat store ready")
	return nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) UpsertUser(ctx context.Context, user models.MUser) (*models.MUser, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Provider == "" {
		user.Provider = "local"
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.users[user.ID]; ok {
		existing.Name = user.Name
		existing.LastLogin = now
		m.users[user.ID] = existing
		return &existing, nil
	}
	user.CreatedAt, user.LastLogin = now, now
	m.users[user.ID] = user
	return &user, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) CreateConversation(ctx context.Context, userID, title string) (string, error) {
	if title == "" {
		title = DefaultConversationTitle
	}
	now := m.clock.Now()
	c := &models.MConversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.conversations[c.ID] = c
	m.mu.Unlock()
	return c.ID, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) GetConversation(ctx context.Context, convID string) (*models.MConversation, error) {
	m.mu.RLock()
	c, ok := m.conversations[convID]
	var cp models.MConversation
	if ok {
		cp = *c
	}
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", convID, helpers.ErrNotFound)
	}
	cp.MessageCount = m.Messages.Count(convID)
	return &cp, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) ListConversations(ctx context.Context, userID string, limit int) ([]models.MConversation, error) {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}

	m.mu.RLock()
	out := []models.MConversation{}
	for _, c := range m.conversations {
		if c.UserID == userID {
			cp := *c
			cp.MessageCount = m.Messages.Count(c.ID)
			out = append(out, cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) UpdateConversationTitle(ctx context.Context, convID, title string) error {
	return m.update(convID, func(c *models.MConversation) { c.Title = title })
}

func (m *MemoryChatStore) UpdateConversationSummary(ctx context.Context, convID, summary string) error {
	return m.update(convID, func(c *models.MConversation) { c.Summary = summary })
}

func (m *MemoryChatStore) update(convID string, fn func(*models.MConversation)) error {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[convID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", convID, helpers.ErrNotFound)
	}
	fn(c)
	c.UpdatedAt = now
	return nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) DeleteConversation(ctx context.Context, convID string) error {
	m.mu.Lock()
	delete(m.conversations, convID)
	m.mu.Unlock()
	m.Messages.Delete(convID)
	return nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) SaveMessage(ctx context.Context, convID, role, content, agent string) (string, error) {
	if err := validateRole(role); err != nil {
		return "", err
	}
	msg := models.MChatMessage{
		ID:             uuid.NewString(),
		ConversationID: convID,
		Role:           role,
		Content:        content,
		Agent:          agent,
		CreatedAt:      m.clock.Now(),
	}
	m.Messages.Add(convID, msg)

	m.mu.Lock()
	if c, ok := m.conversations[convID]; ok {
		c.UpdatedAt = msg.CreatedAt
	}
	m.mu.Unlock()
	return msg.ID, nil
}

// -----------------------------------------------------------------------------

// GetMessages returns up to limit of the retained messages, oldest first.
func (m *MemoryChatStore) GetMessages(ctx context.Context, convID string, limit int) ([]models.MChatMessage, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	all := m.Messages.Latest(convID, 0)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) ConversationSummary(ctx context.Context, userID string) (string, error) {
	convs, _ := m.ListConversations(ctx, userID, summaryConversations)

	lines := make([]string, 0, len(convs))
	for _, c := range convs {
		var recent []models.MChatMessage
		if c.Summary == "" {
			latest := m.Messages.Latest(c.ID, summaryMessages)
			for i := len(latest) - 1; i >= 0; i-- {
				recent = append(recent, latest[i])
			}
		}
		lines = append(lines, summaryLine(c, recent))
	}
	return renderSummary(lines), nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) AutoTitle(ctx context.Context, convID, firstMessage string) error {
	title := TitleFromMessage(firstMessage)
	if title == "" {
		return nil
	}
	return m.UpdateConversationTitle(ctx, convID, title)
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) ClearUserHistory(ctx context.Context, userID string) error {
	m.mu.Lock()
	var ids []string
	for id, c := range m.conversations {
		if c.UserID == userID {
			ids = append(ids, id)
			delete(m.conversations, id)
		}
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Messages.Delete(id)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (m *MemoryChatStore) Close() error {
	m.Messages.Cleanup()
	return nil
}
