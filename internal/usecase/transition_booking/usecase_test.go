package transition_booking

import (
	"context"
	"regexp"
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

// fakeBookingRepo in-memory репозиторий с условными обновлениями:
// запись проходит только из ожидаемого статуса, как и в настоящем репозитории
type fakeBookingRepo struct {
	booking *domain.Booking
	now     time.Time

	failWith  error
	rereadErr error
	getCalls  int
	calls     []string
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

func (f *fakeBookingRepo) guard(call string, id int64, from domain.BookingStatus) error {
	f.calls = append(f.calls, call)
	if f.failWith != nil {
		return f.failWith
	}
	if f.booking == nil || f.booking.ID != id {
		return bookingRepo.ErrBookingNotFound
	}
	if f.booking.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	if err := f.guard("UpdateStatus", id, from); err != nil {
		return err
	}
	f.booking.Status = to
	return nil
}

func (f *fakeBookingRepo) Start(ctx context.Context, id int64, from domain.BookingStatus, completionCode string) error {
	if err := f.guard("Start", id, from); err != nil {
		return err
	}
	f.booking.Status = domain.StatusInProgress
	f.booking.StartedAt = &f.now
	f.booking.CompletionCode = &completionCode
	return nil
}

func (f *fakeBookingRepo) Complete(ctx context.Context, id int64, from domain.BookingStatus, completionType domain.CompletionType, notes *string) error {
	if err := f.guard("Complete", id, from); err != nil {
		return err
	}
	f.booking.Status = domain.StatusCompleted
	f.booking.CompletedAt = &f.now
	f.booking.CompletionType = &completionType
	f.booking.CompletionNotes = notes
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancellationType domain.CancellationType) error {
	if err := f.guard("Cancel", id, from); err != nil {
		return err
	}
	f.booking.Status = domain.StatusCancelled
	f.booking.CancelledAt = &f.now
	f.booking.CancellationReason = &reason
	f.booking.CancellationType = &cancellationType
	return nil
}

func (f *fakeBookingRepo) Dispute(ctx context.Context, id int64, from domain.BookingStatus, reason *string) error {
	if err := f.guard("Dispute", id, from); err != nil {
		return err
	}
	f.booking.Status = domain.StatusDisputed
	f.booking.CancellationReason = reason
	return nil
}

func (f *fakeBookingRepo) Restore(ctx context.Context, id int64, to domain.BookingStatus) error {
	if err := f.guard("Restore", id, domain.StatusCancelled); err != nil {
		return err
	}
	f.booking.Status = to
	f.booking.RestoredAt = &f.now
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

var testNow = time.Date(2025, 10, 13, 11, 0, 0, 0, time.UTC)

func testBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:                 1,
		TutorID:            10,
		StudentID:          20,
		BookingDate:        time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC),
		StartTime:          "10:00",
		Status:             status,
		Price:              1500,
		PaymentMethod:      "card",
		GracePeriodMinutes: domain.DefaultGracePeriodMinutes,
	}
}

type testEnv struct {
	uc      *UseCase
	repo    *fakeBookingRepo
	payment *fakePaymentClient
	notify  *fakeNotifyClient
}

func newTestEnv(booking *domain.Booking, now time.Time) *testEnv {
	repo := &fakeBookingRepo{booking: booking, now: now}
	payment := &fakePaymentClient{}
	notify := &fakeNotifyClient{}
	uc := NewUseCase(repo, payment, notify, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return &testEnv{uc: uc, repo: repo, payment: payment, notify: notify}
}

func TestExecute_ConfirmByTutor(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending), testNow)

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionConfirm,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	require.Len(t, env.notify.events, 1)
	assert.Equal(t, string(domain.ActionConfirm), env.notify.events[0].Action)
	assert.Empty(t, env.payment.requests)
}

func TestExecute_StartIssuesCompletionCode(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusConfirmed), testNow)

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionStart,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusInProgress, resp.Booking.Status)
	require.NotNil(t, resp.Booking.CompletionCode)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), *resp.Booking.CompletionCode)
	require.NotNil(t, resp.Booking.StartedAt)
}

func TestExecute_StartBeforeScheduledTime(t *testing.T) {
	// Плановое начало 10:00, сейчас 09:30
	env := newTestEnv(testBooking(domain.StatusConfirmed), time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC))

	_, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionStart,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	assert.ErrorIs(t, err, ErrTooEarlyToStart)
	assert.Equal(t, domain.StatusConfirmed, env.repo.booking.Status)
}

func TestExecute_StartExactlyAtScheduledTime(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusConfirmed), time.Date(2025, 10, 13, 10, 0, 0, 0, time.UTC))

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionStart,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, resp.Booking.Status)
}

func TestExecute_InvalidTransitionsDoNotTouchBooking(t *testing.T) {
	tests := []struct {
		name   string
		status domain.BookingStatus
		action domain.Action
		actor  domain.Actor
	}{
		{"start из pending", domain.StatusPending, domain.ActionStart, domain.ActorTutor},
		{"confirm из confirmed", domain.StatusConfirmed, domain.ActionConfirm, domain.ActorTutor},
		{"complete из confirmed", domain.StatusConfirmed, domain.ActionComplete, domain.ActorSystem},
		{"cancel из completed", domain.StatusCompleted, domain.ActionCancel, domain.ActorStudent},
		{"dispute из cancelled", domain.StatusCancelled, domain.ActionDispute, domain.ActorStudent},
		{"confirm из disputed", domain.StatusDisputed, domain.ActionConfirm, domain.ActorTutor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(testBooking(tt.status), testNow)

			actorID := int64(20)
			if tt.actor == domain.ActorTutor {
				actorID = 10
			}
			_, err := env.uc.Execute(context.Background(), &Request{
				BookingID: 1,
				Action:    tt.action,
				Actor:     tt.actor,
				ActorID:   actorID,
			})

			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.status, env.repo.booking.Status)
			assert.Empty(t, env.repo.calls)
			assert.Empty(t, env.notify.events)
		})
	}
}

func TestExecute_ActorNotAllowedForAction(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending), testNow)

	// confirm разрешён только репетитору
	_, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionConfirm,
		Actor:     domain.ActorStudent,
		ActorID:   20,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// complete разрешён только системе
	_, err = env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionComplete,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecute_AccessDeniedForForeignBooking(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending), testNow)

	_, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionConfirm,
		Actor:     domain.ActorTutor,
		ActorID:   999,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_CancelSetsCancellationType(t *testing.T) {
	tests := []struct {
		name     string
		actor    domain.Actor
		actorID  int64
		expected domain.CancellationType
	}{
		{"отмена студентом", domain.ActorStudent, 20, domain.CancelledByStudent},
		{"отмена репетитором", domain.ActorTutor, 10, domain.CancelledByTutor},
		{"отмена системой", domain.ActorSystem, 0, domain.CancelledAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(testBooking(domain.StatusPending), testNow)

			resp, err := env.uc.Execute(context.Background(), &Request{
				BookingID: 1,
				Action:    domain.ActionCancel,
				Actor:     tt.actor,
				ActorID:   tt.actorID,
				Reason:    ptr.Ptr("планы поменялись"),
			})
			require.NoError(t, err)

			assert.Equal(t, domain.StatusCancelled, resp.Booking.Status)
			require.NotNil(t, resp.Booking.CancellationType)
			assert.Equal(t, tt.expected, *resp.Booking.CancellationType)
			require.NotNil(t, resp.Booking.CancellationReason)
			assert.Equal(t, "планы поменялись", *resp.Booking.CancellationReason)
		})
	}
}

func TestExecute_DisputeKeepsReasonSeparateFromNotes(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusConfirmed), testNow)

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionDispute,
		Actor:     domain.ActorStudent,
		ActorID:   20,
		Reason:    ptr.Ptr("занятие не состоялось"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDisputed, resp.Booking.Status)
	require.NotNil(t, resp.Booking.CancellationReason)
	assert.Equal(t, "занятие не состоялось", *resp.Booking.CancellationReason)
	assert.Nil(t, resp.Booking.CompletionNotes)
}

func TestExecute_CompletePaysExactlyOnce(t *testing.T) {
	booking := testBooking(domain.StatusInProgress)
	startedAt := testNow.Add(-2 * time.Hour)
	booking.StartedAt = &startedAt
	env := newTestEnv(booking, testNow)

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionComplete,
		Actor:     domain.ActorSystem,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
	require.Len(t, env.payment.requests, 1)
	assert.Equal(t, int64(1), env.payment.requests[0].BookingID)
	assert.Equal(t, 1500.0, env.payment.requests[0].Amount)
}

func TestExecute_RereadFailureStillCollectsPayment(t *testing.T) {
	// Переход записан, но перечитывание упало: оплата не должна потеряться
	booking := testBooking(domain.StatusInProgress)
	startedAt := testNow.Add(-2 * time.Hour)
	booking.StartedAt = &startedAt
	env := newTestEnv(booking, testNow)
	env.repo.rereadErr = assert.AnError

	_, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionComplete,
		Actor:     domain.ActorSystem,
	})
	require.ErrorIs(t, err, ErrInternal)

	assert.Equal(t, domain.StatusCompleted, env.repo.booking.Status)
	require.Len(t, env.payment.requests, 1)
	require.Len(t, env.notify.events, 1)
}

func TestExecute_PaymentFailureDoesNotRollBackCompletion(t *testing.T) {
	booking := testBooking(domain.StatusInProgress)
	startedAt := testNow.Add(-2 * time.Hour)
	booking.StartedAt = &startedAt
	env := newTestEnv(booking, testNow)
	env.payment.err = assert.AnError

	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionComplete,
		Actor:     domain.ActorSystem,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
}

func TestExecute_ConcurrentStatusChangeLosesRace(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending), testNow)
	env.repo.failWith = bookingRepo.ErrStatusConflict

	_, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionConfirm,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestExecute_RestoreCancelledBooking(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusCancelled), testNow)

	to := domain.StatusConfirmed
	resp, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 1,
		Action:    domain.ActionRestore,
		Actor:     domain.ActorAdmin,
		RestoreTo: &to,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	require.NotNil(t, resp.Booking.RestoredAt)
}

func TestExecute_RestoreRejections(t *testing.T) {
	t.Run("не из cancelled", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusCompleted), testNow)

		to := domain.StatusPending
		_, err := env.uc.Execute(context.Background(), &Request{
			BookingID: 1,
			Action:    domain.ActionRestore,
			Actor:     domain.ActorAdmin,
			RestoreTo: &to,
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("без целевого статуса", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusCancelled), testNow)

		_, err := env.uc.Execute(context.Background(), &Request{
			BookingID: 1,
			Action:    domain.ActionRestore,
			Actor:     domain.ActorAdmin,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("терминальный целевой статус", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusCancelled), testNow)

		to := domain.StatusCompleted
		_, err := env.uc.Execute(context.Background(), &Request{
			BookingID: 1,
			Action:    domain.ActionRestore,
			Actor:     domain.ActorAdmin,
			RestoreTo: &to,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("не админ", func(t *testing.T) {
		env := newTestEnv(testBooking(domain.StatusCancelled), testNow)

		to := domain.StatusPending
		_, err := env.uc.Execute(context.Background(), &Request{
			BookingID: 1,
			Action:    domain.ActionRestore,
			Actor:     domain.ActorTutor,
			ActorID:   10,
			RestoreTo: &to,
		})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestExecute_BookingNotFound(t *testing.T) {
	env := newTestEnv(nil, testNow)

	_, err := env.uc.Execute(context.Background(), &Request{
		BookingID: 42,
		Action:    domain.ActionConfirm,
		Actor:     domain.ActorTutor,
		ActorID:   10,
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_ValidationErrors(t *testing.T) {
	env := newTestEnv(testBooking(domain.StatusPending), testNow)

	tests := []struct {
		name string
		req  *Request
	}{
		{"нулевой bookingID", &Request{BookingID: 0, Action: domain.ActionConfirm, Actor: domain.ActorTutor, ActorID: 10}},
		{"неизвестное действие", &Request{BookingID: 1, Action: "freeze", Actor: domain.ActorTutor, ActorID: 10}},
		{"неизвестная роль", &Request{BookingID: 1, Action: domain.ActionConfirm, Actor: "robot", ActorID: 10}},
		{"студент без ID", &Request{BookingID: 1, Action: domain.ActionCancel, Actor: domain.ActorStudent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
