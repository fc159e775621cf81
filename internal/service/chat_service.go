package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

// chatServiceImpl implements ChatService interface.
type chatServiceImpl struct {
	chats    repository.ChatRepository
	users    repository.UserRepository
	bookings repository.BookingRepository
	notifier *Notifier
}

// NewChatService creates a new chat service.
func NewChatService(chats repository.ChatRepository, users repository.UserRepository, bookings repository.BookingRepository, notifier *Notifier) ChatService {
	return &chatServiceImpl{
		chats:    chats,
		users:    users,
		bookings: bookings,
		notifier: notifier,
	}
}

// Open returns the chat between a client and a cleaner, creating it on first contact.
func (s *chatServiceImpl) Open(ctx context.Context, actor Actor, req *domain.CreateChatRequest) (*domain.Chat, bool, error) {
	l := log.Ctx(ctx)

	if req.ParticipantID == actor.ID {
		return nil, false, ErrInvalidParticipants
	}

	other, err := s.users.GetByID(ctx, req.ParticipantID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, false, ErrInvalidParticipants
		}
		return nil, false, err
	}

	chat := &domain.Chat{}
	switch {
	case actor.Role == domain.RoleClient && other.Role == domain.RoleCleaner:
		chat.ClientID, chat.CleanerID = actor.ID, other.ID
	case actor.Role == domain.RoleCleaner && other.Role == domain.RoleClient:
		chat.ClientID, chat.CleanerID = other.ID, actor.ID
	default:
		return nil, false, ErrInvalidParticipants
	}

	if req.BookingID != nil && *req.BookingID != "" {
		booking, err := s.bookings.GetByID(ctx, *req.BookingID)
		if err != nil {
			return nil, false, err
		}
		if booking.ClientID != chat.ClientID || booking.CleanerID != chat.CleanerID {
			return nil, false, ErrInvalidParticipants
		}
		chat.BookingID = &booking.ID
	}

	result, created, err := s.chats.GetOrCreate(ctx, chat)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, actor.ID).Msg("failed to open chat")
		return nil, false, err
	}
	if created {
		l.Info().Str(log.FieldChatID, result.ID).Msg("chat created")
	}
	return result, created, nil
}

func (s *chatServiceImpl) List(ctx context.Context, actor Actor) ([]domain.ChatSummary, error) {
	return s.chats.ListForUser(ctx, actor.ID)
}

// Messages pages backwards through a chat the actor takes part in.
func (s *chatServiceImpl) Messages(ctx context.Context, actor Actor, chatID string, before *time.Time, limit int) ([]domain.Message, error) {
	if _, err := s.participantChat(ctx, actor, chatID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = domain.DefaultMessageLimit
	}
	if limit > domain.MaxMessageLimit {
		limit = domain.MaxMessageLimit
	}

	return s.chats.ListMessages(ctx, chatID, before, limit)
}

// Send stores a message and notifies the other participant.
func (s *chatServiceImpl) Send(ctx context.Context, actor Actor, chatID string, content string) (*domain.Message, error) {
	l := log.Ctx(ctx)

	chat, err := s.participantChat(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > domain.MaxMessageLength {
		return nil, ErrInvalidMessage
	}

	msg := &domain.Message{
		ChatID:   chat.ID,
		SenderID: actor.ID,
		Content:  content,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		l.Error().Err(err).Str(log.FieldChatID, chatID).Msg("failed to store message")
		return nil, err
	}

	metrics.RecordMessage()
	s.notifier.Notify(ctx, pubsub.EventChatMessage, pubsub.ChatMessagePayload{
		ChatID:    chat.ID,
		MessageID: msg.ID,
		SenderID:  actor.ID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, chat.OtherParticipant(actor.ID))

	return msg, nil
}

// MarkRead marks the other participant's messages as read.
func (s *chatServiceImpl) MarkRead(ctx context.Context, actor Actor, chatID string) (int64, error) {
	chat, err := s.participantChat(ctx, actor, chatID)
	if err != nil {
		return 0, err
	}

	count, err := s.chats.MarkRead(ctx, chat.ID, actor.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.notifier.Notify(ctx, pubsub.EventChatRead, pubsub.ChatReadPayload{
			ChatID:   chat.ID,
			ReaderID: actor.ID,
			Count:    count,
		}, chat.OtherParticipant(actor.ID))
	}
	return count, nil
}

func (s *chatServiceImpl) participantChat(ctx context.Context, actor Actor, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(actor.ID) {
		return nil, ErrForbidden
	}
	return chat, nil
}
