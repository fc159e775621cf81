package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM-based chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// GetOrCreate returns the existing chat for the pair or creates it.
func (r *GormChatRepository) GetOrCreate(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error) {
	existing, err := r.getByPair(ctx, chat.ClientID, chat.CleanerID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrChatNotFound) {
		return nil, false, err
	}

	model := &domain.ChatModel{
		ID:        uuid.New().String(),
		ClientID:  chat.ClientID,
		CleanerID: chat.CleanerID,
		BookingID: chat.BookingID,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(handleError(err, ErrDuplicate), ErrDuplicate) {
			// Lost a race with a concurrent create for the same pair.
			existing, err := r.getByPair(ctx, chat.ClientID, chat.CleanerID)
			return existing, false, err
		}
		return nil, false, err
	}

	return model.ToDomain(), true, nil
}

func (r *GormChatRepository) getByPair(ctx context.Context, clientID, cleanerID string) (*domain.Chat, error) {
	var model domain.ChatModel
	err := r.db.WithContext(ctx).
		First(&model, "client_id = ? AND cleaner_id = ?", clientID, cleanerID).Error
	if err != nil {
		return nil, notFound(err, ErrChatNotFound)
	}
	return model.ToDomain(), nil
}

// GetByID retrieves a chat by ID.
func (r *GormChatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	var model domain.ChatModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrChatNotFound)
	}
	return model.ToDomain(), nil
}

// ListForUser lists a user's chats, most recently active first, with the other
// participant, the last message and the unread count.
func (r *GormChatRepository) ListForUser(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	l := log.Ctx(ctx)

	var models []domain.ChatModel
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Cleaner").
		Where("client_id = ? OR cleaner_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC").
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list chats from db")
		return nil, err
	}

	if len(models) == 0 {
		return []domain.ChatSummary{}, nil
	}

	ids := make([]string, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}

	last, err := r.lastMessages(ctx, ids)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to load last chat messages")
		return nil, err
	}
	unread, err := r.unreadCounts(ctx, ids, userID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to count unread messages")
		return nil, err
	}

	summaries := make([]domain.ChatSummary, len(models))
	for i := range models {
		m := &models[i]
		summaries[i].Chat = *m.ToDomain()

		other := m.Client
		if m.ClientID == userID {
			other = m.Cleaner
		}
		if other != nil {
			summaries[i].Participant = &domain.Summary{ID: other.ID, Name: other.Name, Role: domain.Role(other.Role)}
		}
		if msg, ok := last[m.ID]; ok {
			summaries[i].LastMessage = msg.ToDomain()
		}
		summaries[i].UnreadCount = unread[m.ID]
	}

	return summaries, nil
}

// lastMessages returns the newest message of each chat in chatIDs.
func (r *GormChatRepository) lastMessages(ctx context.Context, chatIDs []string) (map[string]*domain.MessageModel, error) {
	latest := r.db.Model(&domain.MessageModel{}).
		Select("chat_id, MAX(created_at) AS max_at").
		Where("chat_id IN ?", chatIDs).
		Group("chat_id")

	var models []domain.MessageModel
	err := r.db.WithContext(ctx).
		Table("messages AS m").
		Select("m.*").
		Joins("JOIN (?) AS latest ON latest.chat_id = m.chat_id AND latest.max_at = m.created_at", latest).
		Order("m.id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]*domain.MessageModel, len(models))
	for i := range models {
		if _, ok := out[models[i].ChatID]; !ok {
			out[models[i].ChatID] = &models[i]
		}
	}
	return out, nil
}

// unreadCounts counts messages in chatIDs not sent by userID and not yet read.
func (r *GormChatRepository) unreadCounts(ctx context.Context, chatIDs []string, userID string) (map[string]int64, error) {
	var rows []struct {
		ChatID string
		Unread int64
	}
	err := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Select("chat_id, COUNT(*) AS unread").
		Where("chat_id IN ? AND sender_id <> ? AND is_read = ?", chatIDs, userID, false).
		Group("chat_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ChatID] = row.Unread
	}
	return out, nil
}

// CreateMessage inserts a message and bumps the chat's activity time.
func (r *GormChatRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	msg.ID = uuid.New().String()

	model := &domain.MessageModel{
		ID:       msg.ID,
		ChatID:   msg.ChatID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Model(&domain.ChatModel{}).
			Where("id = ?", msg.ChatID).
			Update("last_message_at", model.CreatedAt).Error
	})
	if err != nil {
		return err
	}

	msg.CreatedAt = model.CreatedAt
	return nil
}

// ListMessages pages backwards through a chat.
func (r *GormChatRepository) ListMessages(ctx context.Context, chatID string, before *time.Time, limit int) ([]domain.Message, error) {
	query := r.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var models []domain.MessageModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	messages := make([]domain.Message, len(models))
	for i := range models {
		messages[i] = *models[i].ToDomain()
	}
	return messages, nil
}

// MarkRead marks the other participant's unread messages as read.
func (r *GormChatRepository) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

var _ ChatRepository = (*GormChatRepository)(nil)
