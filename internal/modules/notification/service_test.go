package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tourbook/internal/database"
	"tourbook/internal/domain"
)

func testExpiry() time.Time {
	return time.Now().Add(24 * time.Hour).UTC()
}

func testDB(t *testing.T) *gorm.DB {
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Notification{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type stubUserReader struct {
	user *domain.User
	err  error
}

func (s stubUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.user, s.err
}

type recordingSender struct {
	events []Event
	err    error
}

func (s *recordingSender) Send(ctx context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestDispatch_PersistsRowAndSendsEvent(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{}
	svc := NewService(NewRepository(db), stubUserReader{
		user: &domain.User{ID: 9, Email: "client@example.com", Phone: "+966 50 123 4567"},
	}, sender, nil)

	err := svc.NotifyBookingApproved(context.Background(), 9, 55, testExpiry())
	require.NoError(t, err)

	list, unread, err := svc.GetUserNotifications(context.Background(), 9, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, EventBookingApproved, list[0].Type)
	assert.NotEmpty(t, list[0].EventID)
	assert.Equal(t, int64(1), unread)

	require.Len(t, sender.events, 1)
	assert.Equal(t, "client@example.com", sender.events[0].RecipientEmail)
	assert.Equal(t, int64(55), sender.events[0].TemplateFields["booking_id"])
	assert.Contains(t, sender.events[0].TemplateFields["checkout_ref"], "/bookings/55/checkout")
}

func TestDispatch_SenderFailureIsSwallowed(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(NewRepository(db), stubUserReader{
		user: &domain.User{ID: 9, Email: "client@example.com"},
	}, sender, nil)

	err := svc.NotifyBookingRejected(context.Background(), 9, 55, "fully booked")
	require.NoError(t, err)

	// The in-app row still lands even though delivery failed.
	list, _, err := svc.GetUserNotifications(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDispatch_RecipientLookupFailureStillPersists(t *testing.T) {
	db := testDB(t)
	sender := &recordingSender{}
	svc := NewService(NewRepository(db), stubUserReader{err: gorm.ErrRecordNotFound}, sender, nil)

	err := svc.NotifyPaymentReceived(context.Background(), 9, 55, 1700)
	require.NoError(t, err)

	require.Len(t, sender.events, 1)
	assert.Empty(t, sender.events[0].RecipientEmail)
}

func TestMarkAsRead_ScopedToOwner(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, stubUserReader{user: &domain.User{ID: 9}}, nil, nil)

	require.NoError(t, svc.NotifyBookingRequested(context.Background(), 9, 55))
	list, _, err := svc.GetUserNotifications(context.Background(), 9, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Another user's id must not flip the flag.
	require.NoError(t, svc.MarkAsRead(context.Background(), list[0].ID, 8))
	_, unread, err := svc.GetUserNotifications(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.MarkAsRead(context.Background(), list[0].ID, 9))
	_, unread, err = svc.GetUserNotifications(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
