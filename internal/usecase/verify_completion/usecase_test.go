package verify_completion

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
	attemptErr  error
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

func (f *fakeBookingRepo) IncrementCompletionAttempts(ctx context.Context, id int64) error {
	if f.attemptErr != nil {
		return f.attemptErr
	}
	f.booking.CompletionAttempts++
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

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func inProgressBooking() *domain.Booking {
	startedAt := time.Date(2025, 10, 13, 10, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:             1,
		TutorID:        10,
		StudentID:      20,
		Status:         domain.StatusInProgress,
		Price:          1500,
		PaymentMethod:  "card",
		StartedAt:      &startedAt,
		CompletionCode: ptr.Ptr("483920"),
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
	return &testEnv{uc: uc, repo: repo, payment: payment, notify: notify}
}

func TestExecute_CorrectCodeCompletesBooking(t *testing.T) {
	env := newTestEnv(inProgressBooking())

	resp, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "483920"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
	require.NotNil(t, resp.Booking.CompletionType)
	assert.Equal(t, domain.CompletionManual, *resp.Booking.CompletionType)

	require.Len(t, env.payment.requests, 1)
	assert.Equal(t, 1500.0, env.payment.requests[0].Amount)

	require.Len(t, env.notify.events, 1)
	assert.Equal(t, string(domain.ActorStudent), env.notify.events[0].Actor)
	assert.Equal(t, string(domain.ActionComplete), env.notify.events[0].Action)
}

func TestExecute_CodeIsTrimmedBeforeComparison(t *testing.T) {
	env := newTestEnv(inProgressBooking())

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "  483920  "})
	assert.NoError(t, err)
}

func TestExecute_WrongCodeRecordsAttempt(t *testing.T) {
	env := newTestEnv(inProgressBooking())

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "000000"})
	assert.ErrorIs(t, err, ErrInvalidCode)

	// Статус не изменился, попытка зафиксирована, оплаты нет
	assert.Equal(t, domain.StatusInProgress, env.repo.booking.Status)
	assert.Equal(t, 1, env.repo.booking.CompletionAttempts)
	assert.Empty(t, env.payment.requests)
	assert.Empty(t, env.notify.events)
}

func TestExecute_AttemptRecordFailureStillRejectsCode(t *testing.T) {
	env := newTestEnv(inProgressBooking())
	env.repo.attemptErr = assert.AnError

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "000000"})
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestExecute_ForeignStudent(t *testing.T) {
	env := newTestEnv(inProgressBooking())

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 999, Code: "483920"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 0, env.repo.booking.CompletionAttempts)
}

func TestExecute_BookingNotInProgress(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusDisputed,
	} {
		t.Run(string(status), func(t *testing.T) {
			booking := inProgressBooking()
			booking.Status = status
			env := newTestEnv(booking)

			_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "483920"})
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestExecute_ConcurrentCompletionLosesRace(t *testing.T) {
	env := newTestEnv(inProgressBooking())
	env.repo.completeErr = bookingRepo.ErrStatusConflict

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "483920"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExecute_BookingNotFound(t *testing.T) {
	env := newTestEnv(nil)

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 42, StudentID: 20, Code: "483920"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_CodeFormatValidation(t *testing.T) {
	env := newTestEnv(inProgressBooking())

	tests := []struct {
		name string
		code string
	}{
		{"пустой код", ""},
		{"короткий код", "1234"},
		{"длинный код", "1234567"},
		{"буквы в коде", "12a456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: tt.code})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_RereadFailureStillCollectsPayment(t *testing.T) {
	// Завершение записано, но перечитывание упало: оплата не должна потеряться
	env := newTestEnv(inProgressBooking())
	env.repo.rereadErr = assert.AnError

	_, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "483920"})
	require.ErrorIs(t, err, ErrInternal)

	assert.Equal(t, domain.StatusCompleted, env.repo.booking.Status)
	require.Len(t, env.payment.requests, 1)
	require.Len(t, env.notify.events, 1)
}

func TestExecute_PaymentFailureDoesNotRollBackCompletion(t *testing.T) {
	env := newTestEnv(inProgressBooking())
	env.payment.err = assert.AnError

	resp, err := env.uc.Execute(context.Background(), &Request{BookingID: 1, StudentID: 20, Code: "483920"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
}
