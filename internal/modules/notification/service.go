package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourbook/internal/domain"
)

// Sender is the external delivery transport (email/SMS). Implementations
// must not block on retries; the dispatcher treats any error as a logged
// drop, never as a pipeline failure.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Service struct {
	repo   *Repository
	users  userReader
	sender Sender
	logger *zap.Logger
}

func NewService(repo *Repository, users userReader, sender Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, users: users, sender: sender, logger: logger}
}

// Dispatch persists the in-app row and hands the event to the transport.
// Transport failures are logged and swallowed: the state transition that
// triggered the event is the source of truth, not the notification.
func (s *Service) Dispatch(ctx context.Context, userID int64, t EventType, title, message string, fields map[string]any) error {
	event := Event{
		ID:             uuid.New().String(),
		Type:           t,
		TemplateFields: fields,
		CreatedAt:      time.Now().UTC(),
	}

	if user, err := s.users.GetByID(ctx, userID); err == nil {
		event.RecipientEmail = user.Email
		event.RecipientPhone = user.Phone
	} else {
		s.logger.Warn("recipient lookup failed", zap.Int64("user_id", userID), zap.Error(err))
	}

	n := &Notification{
		UserID:  userID,
		EventID: event.ID,
		Type:    t,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.sender != nil {
		if err := s.sender.Send(ctx, event); err != nil {
			s.logger.Error("notification delivery failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(t)),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) NotifyBookingRequested(ctx context.Context, providerUserID, bookingID int64) error {
	return s.Dispatch(ctx, providerUserID, EventBookingRequested,
		"New booking request",
		fmt.Sprintf("Booking #%d is waiting for your decision", bookingID),
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingApproved(ctx context.Context, clientUserID, bookingID int64, expiresAt time.Time) error {
	return s.Dispatch(ctx, clientUserID, EventBookingApproved,
		"Booking approved, pay now",
		fmt.Sprintf("Booking #%d was approved. Complete payment before %s", bookingID, expiresAt.Format(time.RFC3339)),
		map[string]any{
			"booking_id":   bookingID,
			"checkout_ref": fmt.Sprintf("/bookings/%d/checkout", bookingID),
			"expires_at":   expiresAt,
		},
	)
}

func (s *Service) NotifyBookingRejected(ctx context.Context, clientUserID, bookingID int64, reason string) error {
	msg := fmt.Sprintf("Booking #%d was rejected", bookingID)
	if reason != "" {
		msg = msg + ". Reason: " + reason
	}
	return s.Dispatch(ctx, clientUserID, EventBookingRejected,
		"Booking rejected",
		msg,
		map[string]any{"booking_id": bookingID, "reason": reason},
	)
}

func (s *Service) NotifyPaymentReceived(ctx context.Context, userID, bookingID int64, amount float64) error {
	return s.Dispatch(ctx, userID, EventPaymentReceived,
		"Payment received",
		fmt.Sprintf("Payment of %.2f for booking #%d was received", amount, bookingID),
		map[string]any{"booking_id": bookingID, "amount": amount},
	)
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}
