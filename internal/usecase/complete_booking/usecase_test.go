package complete_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
	"github.com/m04kA/TMS-BookingService/pkg/ptr"
)

type fakeBookingRepo struct {
	booking *domain.Booking

	completeErr error
	rereadErr   error
	getCalls    int
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	f.getCalls++
	if f.rereadErr != nil && f.getCalls > 1 {
		return nil, f.rereadErr
	}
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	b := *f.booking
	return &b, nil
}

func (f *fakeBookingRepo) Complete(ctx context.Context, id int64, from domain.BookingStatus, completionType domain.CompletionType, notes *string) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	if f.booking.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	now := time.Now()
	f.booking.Status = domain.StatusCompleted
	f.booking.CompletedAt = &now
	f.booking.CompletionType = &completionType
	f.booking.CompletionNotes = notes
	return nil
}

type fakePaymentClient struct {
	requests []*paymentservice.CollectRequest
	err      error
}

func (f *fakePaymentClient) CollectPayment(ctx context.Context, req *paymentservice.CollectRequest) (*paymentservice.CollectResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &paymentservice.CollectResponse{Status: "collected"}, nil
}

type fakeNotifyClient struct {
	events []*notifyservice.BookingEvent
}

func (f *fakeNotifyClient) NotifyBookingEvent(ctx context.Context, event *notifyservice.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

var testNow = time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

func startedBooking(startedAgo time.Duration) *domain.Booking {
	startedAt := testNow.Add(-startedAgo)
	return &domain.Booking{
		ID:            1,
		TutorID:       10,
		StudentID:     20,
		Status:        domain.StatusInProgress,
		Price:         1500,
		PaymentMethod: "card",
		StartedAt:     &startedAt,
	}
}

type testEnv struct {
	uc      *UseCase
	repo    *fakeBookingRepo
	payment *fakePaymentClient
	notify  *fakeNotifyClient
}

func newTestEnv(booking *domain.Booking) *testEnv {
	repo := &fakeBookingRepo{booking: booking}
	payment := &fakePaymentClient{}
	notify := &fakeNotifyClient{}
	uc := NewUseCase(repo, payment, notify, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return &testEnv{uc: uc, repo: repo, payment: payment, notify: notify}
}

func TestExecute_CompletesAfterMinimumDuration(t *testing.T) {
	env := newTestEnv(startedBooking(90 * time.Minute))

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		TutorID:   10,
		Notes:     ptr.Ptr("студент ушёл, не подтвердив код"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
	require.NotNil(t, resp.Booking.CompletionType)
	assert.Equal(t, domain.CompletionManual, *resp.Booking.CompletionType)
	require.NotNil(t, resp.Booking.CompletionNotes)

	require.Len(t, env.payment.requests, 1)
	require.Len(t, env.notify.events, 1)
	assert.Equal(t, string(domain.ActorTutor), env.notify.events[0].Actor)
}

func TestExecute_MinimumDurationBoundary(t *testing.T) {
	t.Run("ровно час - можно", func(t *testing.T) {
		env := newTestEnv(startedBooking(60 * time.Minute))

		_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 10})
		assert.NoError(t, err)
	})

	t.Run("59 минут - рано", func(t *testing.T) {
		env := newTestEnv(startedBooking(59 * time.Minute))

		_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 10})
		assert.ErrorIs(t, err, ErrTooEarlyToComplete)
		assert.Equal(t, domain.StatusInProgress, env.repo.booking.Status)
		assert.Empty(t, env.payment.requests)
	})
}

func TestExecute_ForeignTutor(t *testing.T) {
	env := newTestEnv(startedBooking(90 * time.Minute))

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 999})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_BookingNotInProgress(t *testing.T) {
	booking := startedBooking(90 * time.Minute)
	booking.Status = domain.StatusConfirmed
	env := newTestEnv(booking)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 10})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExecute_InProgressWithoutStartedAt(t *testing.T) {
	booking := startedBooking(90 * time.Minute)
	booking.StartedAt = nil
	env := newTestEnv(booking)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 10})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExecute_ConcurrentCompletionLosesRace(t *testing.T) {
	env := newTestEnv(startedBooking(90 * time.Minute))
	env.repo.completeErr = bookingRepo.ErrStatusConflict

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 10})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExecute_BookingNotFound(t *testing.T) {
	env := newTestEnv(nil)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, TutorID: 10})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_RereadFailureStillCollectsPayment(t *testing.T) {
	// Завершение записано, но перечитывание упало: оплата не должна потеряться
	env := newTestEnv(startedBooking(90 * time.Minute))
	env.repo.rereadErr = assert.AnError

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 10})
	require.ErrorIs(t, err, ErrInternal)

	assert.Equal(t, domain.StatusCompleted, env.repo.booking.Status)
	require.Len(t, env.payment.requests, 1)
	require.Len(t, env.notify.events, 1)
}

func TestExecute_ValidationErrors(t *testing.T) {
	env := newTestEnv(startedBooking(90 * time.Minute))

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 0, TutorID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.uc.Execute(context.Background(), &Request{BookingID: 1, TutorID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
