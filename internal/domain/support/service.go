package support

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/nestly/internal/store"
)

// Collection is the store collection holding tickets.
const Collection = "support_tickets"

// Service handles support tickets.
type Service struct {
	client store.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new support service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger, now: time.Now}
}

// List returns the user's tickets, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Ticket, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	q := store.From(Collection).Filter(store.Eq("user_id", userID)).OrderBy("created_at", true)
	res, err := s.client.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]Ticket, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// Create opens a ticket for the user.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Ticket, error) {
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if strings.TrimSpace(userID) == "" || subject == "" || message == "" {
		return nil, ErrInvalidInput
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	now := s.now().UTC()
	row, err := s.client.Insert(ctx, Collection, store.Row{
		"user_id":    userID,
		"subject":    subject,
		"message":    message,
		"status":     string(StatusOpen),
		"priority":   string(priority),
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	t := fromRow(row)
	return &t, nil
}

func fromRow(r store.Row) Ticket {
	return Ticket{
		ID:        r.String("id"),
		UserID:    r.String("user_id"),
		Subject:   r.String("subject"),
		Message:   r.String("message"),
		Status:    TicketStatus(r.String("status")),
		Priority:  Priority(r.String("priority")),
		CreatedAt: r.Time("created_at"),
		UpdatedAt: r.Time("updated_at"),
	}
}
