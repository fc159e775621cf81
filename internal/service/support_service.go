package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blackicons2020/skillskonnect-sub001/internal/audit"
	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/idgen"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

const (
	ticketReferenceSize     = 8
	ticketReferenceAttempts = 5
)

// supportServiceImpl implements SupportService interface.
type supportServiceImpl struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	refs     *idgen.Generator
	notifier *Notifier
	now      func() time.Time
}

// NewSupportService creates a new support service.
func NewSupportService(tickets repository.TicketRepository, users repository.UserRepository, notifier *Notifier) SupportService {
	return &supportServiceImpl{
		tickets:  tickets,
		users:    users,
		refs:     idgen.MustNew(domain.TicketReferencePrefix, ticketReferenceSize, idgen.ReferenceAlphabet),
		notifier: notifier,
		now:      time.Now,
	}
}

// Create opens a ticket with a fresh reference for the actor.
func (s *supportServiceImpl) Create(ctx context.Context, actor Actor, req *domain.CreateTicketRequest) (*domain.SupportTicket, error) {
	l := log.Ctx(ctx)

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	ticket := &domain.SupportTicket{
		UserID:   actor.ID,
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Category: req.Category,
		Priority: priority,
		Status:   domain.TicketOpen,
	}

	var err error
	for attempt := 0; attempt < ticketReferenceAttempts; attempt++ {
		ticket.Reference, err = s.refs.Generate()
		if err != nil {
			return nil, err
		}
		err = s.tickets.Create(ctx, ticket)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		l.Warn().Str("reference", ticket.Reference).Msg("ticket reference collision, retrying")
	}
	if err != nil {
		l.Error().Err(err).Msg("failed to create ticket")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionCreateTicket, actor.ID, ticket.ID, ticket.Reference, "support ticket created")
	return ticket, nil
}

func (s *supportServiceImpl) ListMine(ctx context.Context, actor Actor, page domain.Pagination) ([]domain.SupportTicket, int64, error) {
	return s.tickets.List(ctx, domain.TicketFilter{UserID: actor.ID, Pagination: page})
}

// Get returns a ticket to its owner or an admin.
func (s *supportServiceImpl) Get(ctx context.Context, actor Actor, ticketID string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return ticket, nil
}

func (s *supportServiceImpl) AdminList(ctx context.Context, filter domain.TicketFilter) ([]domain.SupportTicket, int64, error) {
	return s.tickets.List(ctx, filter)
}

// AdminUpdate applies an admin's response, assignment or status change.
func (s *supportServiceImpl) AdminUpdate(ctx context.Context, actor Actor, ticketID string, req *domain.UpdateTicketRequest) (*domain.SupportTicket, error) {
	l := log.Ctx(ctx)

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			ticket.AssignedTo = nil
		} else {
			assignee, err := s.users.GetByID(ctx, *req.AssignedTo)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return nil, ErrInvalidAssignee
				}
				return nil, err
			}
			if !assignee.IsAdmin {
				return nil, ErrInvalidAssignee
			}
			ticket.AssignedTo = &assignee.ID
		}
	}

	if req.AdminResponse != nil {
		ticket.AdminResponse = strings.TrimSpace(*req.AdminResponse)
	}

	if req.Status != nil && *req.Status != ticket.Status {
		ticket.Status = *req.Status
		switch ticket.Status {
		case domain.TicketResolved, domain.TicketClosed:
			if ticket.ResolvedAt == nil {
				now := s.now().UTC()
				ticket.ResolvedAt = &now
			}
		default:
			ticket.ResolvedAt = nil
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		l.Error().Err(err).Str(log.FieldTicketID, ticketID).Msg("failed to update ticket")
		return nil, err
	}

	audit.LogTarget(ctx, audit.ActionUpdateTicket, actor.ID, ticket.ID, string(ticket.Status), "support ticket updated")
	s.notifier.Notify(ctx, pubsub.EventSupportTicketUpdate, pubsub.TicketPayload{
		TicketID:  ticket.ID,
		Reference: ticket.Reference,
		Status:    string(ticket.Status),
	}, ticket.UserID)

	return ticket, nil
}
