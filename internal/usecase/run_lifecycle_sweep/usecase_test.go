package run_lifecycle_sweep

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/TMS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/TMS-BookingService/internal/integrations/notifyservice"
	"github.com/m04kA/TMS-BookingService/internal/integrations/paymentservice"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

type fakeBookingRepo struct {
	bookings []domain.Booking

	listErr error
	// пер-бронирование ошибки записи
	completeErr map[int64]error
	cancelErr   map[int64]error

	completed map[int64]domain.CompletionType
	cancelled map[int64]string
}

func newFakeRepo(bookings ...domain.Booking) *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:    bookings,
		completeErr: map[int64]error{},
		cancelErr:   map[int64]error{},
		completed:   map[int64]domain.CompletionType{},
		cancelled:   map[int64]string{},
	}
}

func (f *fakeBookingRepo) ListOpen(ctx context.Context) ([]*domain.Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var open []*domain.Booking
	for i := range f.bookings {
		if !f.bookings[i].IsTerminal() {
			b := f.bookings[i]
			open = append(open, &b)
		}
	}
	return open, nil
}

func (f *fakeBookingRepo) Complete(ctx context.Context, id int64, from domain.BookingStatus, completionType domain.CompletionType, notes *string) error {
	if err := f.completeErr[id]; err != nil {
		return err
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			if f.bookings[i].Status != from {
				return bookingRepo.ErrStatusConflict
			}
			f.bookings[i].Status = domain.StatusCompleted
			f.completed[id] = completionType
			return nil
		}
	}
	return bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancellationType domain.CancellationType) error {
	if err := f.cancelErr[id]; err != nil {
		return err
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			if f.bookings[i].Status != from {
				return bookingRepo.ErrStatusConflict
			}
			f.bookings[i].Status = domain.StatusCancelled
			f.cancelled[id] = reason
			return nil
		}
	}
	return bookingRepo.ErrBookingNotFound
}

type fakePaymentClient struct {
	requests []*paymentservice.CollectRequest
}

func (f *fakePaymentClient) CollectPayment(ctx context.Context, req *paymentservice.CollectRequest) (*paymentservice.CollectResponse, error) {
	f.requests = append(f.requests, req)
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

// Проход выполняется в 14:00 UTC
var sweepNow = time.Date(2025, 10, 13, 14, 0, 0, 0, time.UTC)

var sweepDate = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

func openBooking(id int64, status domain.BookingStatus, startTime string) domain.Booking {
	return domain.Booking{
		ID:                 id,
		TutorID:            10,
		StudentID:          20,
		BookingDate:        sweepDate,
		StartTime:          types.TimeString(startTime),
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

func newTestEnv(repo *fakeBookingRepo) *testEnv {
	payment := &fakePaymentClient{}
	notify := &fakeNotifyClient{}
	uc := NewUseCase(repo, payment, notify, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: sweepNow}
	return &testEnv{uc: uc, repo: repo, payment: payment, notify: notify}
}

func TestExecute_AutoCompletesLongRunningSession(t *testing.T) {
	booking := openBooking(1, domain.StatusInProgress, "11:00")
	startedAt := sweepNow.Add(-3 * time.Hour)
	booking.StartedAt = &startedAt
	env := newTestEnv(newFakeRepo(booking))

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Scanned)
	assert.Equal(t, 1, resp.Completed)
	assert.Equal(t, 0, resp.Cancelled)
	assert.Equal(t, domain.CompletionAuto, env.repo.completed[1])

	// Автозавершение списывает оплату и уведомляет от имени системы
	require.Len(t, env.payment.requests, 1)
	require.Len(t, env.notify.events, 1)
	assert.Equal(t, string(domain.ActorSystem), env.notify.events[0].Actor)
}

func TestExecute_AutoCompleteWinsOverSafetyCancel(t *testing.T) {
	// Занятие подходит и под автозавершение, и под страховочную отмену:
	// плановое начало 10:00 (14:00 > 13:00), старт 3 часа назад
	booking := openBooking(1, domain.StatusInProgress, "10:00")
	startedAt := sweepNow.Add(-3 * time.Hour)
	booking.StartedAt = &startedAt
	env := newTestEnv(newFakeRepo(booking))

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Completed)
	assert.Equal(t, 0, resp.Cancelled)
}

func TestExecute_GraceCancelForUnconfirmedBooking(t *testing.T) {
	// Плановое начало 13:30, grace 15 минут: 14:00 > 13:45
	booking := openBooking(1, domain.StatusPending, "13:30")
	env := newTestEnv(newFakeRepo(booking))

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Cancelled)
	expectedReason := fmt.Sprintf("не подтверждено в течение %d минут после начала занятия", domain.DefaultGracePeriodMinutes)
	assert.Equal(t, expectedReason, env.repo.cancelled[1])
	assert.Empty(t, env.payment.requests)
}

func TestExecute_GracePeriodNotYetExpired(t *testing.T) {
	// Плановое начало 13:50: 14:00 < 14:05, ещё в пределах grace-периода
	booking := openBooking(1, domain.StatusPending, "13:50")
	env := newTestEnv(newFakeRepo(booking))

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Cancelled)
	assert.Equal(t, domain.StatusPending, env.repo.bookings[0].Status)
}

func TestExecute_SafetyCancelForStaleConfirmedBooking(t *testing.T) {
	// Подтверждено, но так и не началось: плановое начало 10:00, 14:00 > 13:00
	booking := openBooking(1, domain.StatusConfirmed, "10:00")
	env := newTestEnv(newFakeRepo(booking))

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Cancelled)
	assert.Equal(t, "занятие не было завершено", env.repo.cancelled[1])
}

func TestExecute_FreshBookingsUntouched(t *testing.T) {
	pending := openBooking(1, domain.StatusPending, "15:00")
	confirmed := openBooking(2, domain.StatusConfirmed, "14:00")
	inProgress := openBooking(3, domain.StatusInProgress, "13:00")
	startedAt := sweepNow.Add(-30 * time.Minute)
	inProgress.StartedAt = &startedAt
	env := newTestEnv(newFakeRepo(pending, confirmed, inProgress))

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Scanned)
	assert.Equal(t, 0, resp.Completed)
	assert.Equal(t, 0, resp.Cancelled)
	assert.Equal(t, 0, resp.Failed)
}

func TestExecute_SecondRunIsIdempotent(t *testing.T) {
	booking := openBooking(1, domain.StatusPending, "13:30")
	env := newTestEnv(newFakeRepo(booking))

	first, err := env.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Cancelled)

	// Отмененное бронирование терминально и в выборку больше не попадает
	second, err := env.uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Scanned)
	assert.Equal(t, 0, second.Cancelled)
}

func TestExecute_ConcurrentChangeSkippedSilently(t *testing.T) {
	booking := openBooking(1, domain.StatusPending, "13:30")
	repo := newFakeRepo(booking)
	repo.cancelErr[1] = bookingRepo.ErrStatusConflict
	env := newTestEnv(repo)

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	// Конфликт статуса - не сбой: проигравший проход просто пропускает бронирование
	assert.Equal(t, 0, resp.Cancelled)
	assert.Equal(t, 0, resp.Failed)
}

func TestExecute_PerBookingFailureIsolation(t *testing.T) {
	broken := openBooking(1, domain.StatusPending, "13:30")
	healthy := openBooking(2, domain.StatusPending, "13:30")
	repo := newFakeRepo(broken, healthy)
	repo.cancelErr[1] = assert.AnError
	env := newTestEnv(repo)

	resp, err := env.uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 1, resp.Cancelled)
	assert.Equal(t, domain.StatusCancelled, env.repo.bookings[1].Status)
}

func TestExecute_ListFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = assert.AnError
	env := newTestEnv(repo)

	_, err := env.uc.Execute(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}
