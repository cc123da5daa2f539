package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TMS-BookingService/pkg/psqlbuilder"
)

// pgUniqueViolation код ошибки PostgreSQL unique_violation
const pgUniqueViolation = "23505"

// activeSlotConstraint имя partial unique index, защищающего слот от двойного бронирования
const activeSlotConstraint = "bookings_active_slot_uniq"

// bookingColumns полный список колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"tutor_id",
	"student_id",
	"booking_date",
	"start_time",
	"status",
	"price",
	"payment_method",
	"started_at",
	"completed_at",
	"cancelled_at",
	"restored_at",
	"completion_type",
	"completion_notes",
	"completion_code",
	"completion_attempts",
	"cancellation_reason",
	"cancellation_type",
	"grace_period_minutes",
	"student_rating",
	"has_rated",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование со статусом pending
//
// Атомарность защиты слота обеспечивается двумя уровнями:
// - usecase выполняет проверку и вставку в сериализуемой транзакции (через контекст)
// - partial unique index bookings_active_slot_uniq на (tutor_id, booking_date, start_time)
//   для активных статусов отклоняет вставку даже вне транзакции
// Нарушение индекса транслируется в ErrSlotTaken
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"tutor_id",
			"student_id",
			"booking_date",
			"start_time",
			"status",
			"price",
			"payment_method",
			"grace_period_minutes",
		).
		Values(
			booking.TutorID,
			booking.StudentID,
			booking.BookingDate,
			booking.StartTime,
			booking.Status,
			booking.Price,
			booking.PaymentMethod,
			booking.GracePeriodMinutes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetActiveByTutorAndDate получает активные бронирования репетитора на дату
// Внутри транзакции добавляет FOR UPDATE: строки блокируются до конца транзакции,
// что вместе с serializable-изоляцией закрывает гонку "проверили - вставили"
func (r *Repository) GetActiveByTutorAndDate(ctx context.Context, tutorID int64, date string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"tutor_id": tutorID}).
		Where(squirrel.Eq{"booking_date": date}).
		Where(squirrel.Eq{"status": activeStatusStrings()}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByTutorAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByTutorAndDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByStudentID получает список бронирований студента
// Опционально фильтрует по статусу
func (r *Repository) GetByStudentID(ctx context.Context, studentID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("booking_date DESC, start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStudentID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByStudentID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByTutorWithFilter получает бронирования репетитора с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению терминальных бронирований
func (r *Repository) GetByTutorWithFilter(ctx context.Context, filter domain.TutorBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"tutor_id": filter.TutorID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": activeStatusStrings()})
	}

	// Для конкретной даты сортируем по времени начала, иначе - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC, start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTutorWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTutorWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListOpen получает все нетерминальные бронирования для lifecycle sweep
func (r *Repository) ListOpen(ctx context.Context) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": activeStatusStrings()}).
		OrderBy("booking_date ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListOpen - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOpen - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus переводит бронирование из from в to
// Условное обновление: если статус уже изменился, возвращает ErrStatusConflict,
// не затрагивая строку - вторая из гоняющихся транзакций всегда проигрывает
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()"))

	return r.conditionalUpdate(ctx, "UpdateStatus", id, from, updateBuilder)
}

// Start переводит подтвержденное бронирование в in_progress
// Фиксирует started_at и выданный студенту код завершения
func (r *Repository) Start(ctx context.Context, id int64, from domain.BookingStatus, completionCode string) error {
	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusInProgress).
		Set("started_at", squirrel.Expr("NOW()")).
		Set("completion_code", completionCode).
		Set("updated_at", squirrel.Expr("NOW()"))

	return r.conditionalUpdate(ctx, "Start", id, from, updateBuilder)
}

// Complete завершает идущее занятие
func (r *Repository) Complete(ctx context.Context, id int64, from domain.BookingStatus, completionType domain.CompletionType, notes *string) error {
	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("completed_at", squirrel.Expr("NOW()")).
		Set("completion_type", completionType).
		Set("completion_notes", notes).
		Set("updated_at", squirrel.Expr("NOW()"))

	return r.conditionalUpdate(ctx, "Complete", id, from, updateBuilder)
}

// Cancel отменяет бронирование с указанием причины и инициатора
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string, cancellationType domain.CancellationType) error {
	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancellation_type", cancellationType).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()"))

	return r.conditionalUpdate(ctx, "Cancel", id, from, updateBuilder)
}

// Dispute переводит бронирование в disputed
// Причина спора пишется в cancellation_reason: completion_notes заняты
// заметками о завершении занятия
func (r *Repository) Dispute(ctx context.Context, id int64, from domain.BookingStatus, reason *string) error {
	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", domain.StatusDisputed).
		Set("cancellation_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()"))

	return r.conditionalUpdate(ctx, "Dispute", id, from, updateBuilder)
}

// Restore восстанавливает отмененное бронирование в дотерминальный статус
// Хук для внешнего административного инструмента
func (r *Repository) Restore(ctx context.Context, id int64, to domain.BookingStatus) error {
	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("restored_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()"))

	return r.conditionalUpdate(ctx, "Restore", id, domain.StatusCancelled, updateBuilder)
}

// IncrementCompletionAttempts увеличивает счетчик неверных попыток ввода кода
// Статус бронирования не меняется
func (r *Repository) IncrementCompletionAttempts(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("completion_attempts", squirrel.Expr("completion_attempts + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: IncrementCompletionAttempts - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: IncrementCompletionAttempts - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: IncrementCompletionAttempts - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// SetRating сохраняет оценку студента за завершенное занятие
func (r *Repository) SetRating(ctx context.Context, id int64, rating int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("student_rating", rating).
		Set("has_rated", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusCompleted}).
		Where(squirrel.Eq{"has_rated": false}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetRating - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetRating - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetRating - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyRated
	}

	return nil
}

// conditionalUpdate выполняет обновление с условием на текущий статус
// 0 затронутых строк означает либо отсутствие бронирования, либо конкурентное
// изменение статуса - различаем повторным чтением
func (r *Repository) conditionalUpdate(ctx context.Context, method string, id int64, from domain.BookingStatus, updateBuilder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := updateBuilder.
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}

// scanBooking сканирует одну строку в модель бронирования
func (r *Repository) scanBooking(row *sql.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.TutorID,
		&booking.StudentID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.Status,
		&booking.Price,
		&booking.PaymentMethod,
		&booking.StartedAt,
		&booking.CompletedAt,
		&booking.CancelledAt,
		&booking.RestoredAt,
		&booking.CompletionType,
		&booking.CompletionNotes,
		&booking.CompletionCode,
		&booking.CompletionAttempts,
		&booking.CancellationReason,
		&booking.CancellationType,
		&booking.GracePeriodMinutes,
		&booking.StudentRating,
		&booking.HasRated,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&booking.ID,
			&booking.TutorID,
			&booking.StudentID,
			&booking.BookingDate,
			&booking.StartTime,
			&booking.Status,
			&booking.Price,
			&booking.PaymentMethod,
			&booking.StartedAt,
			&booking.CompletedAt,
			&booking.CancelledAt,
			&booking.RestoredAt,
			&booking.CompletionType,
			&booking.CompletionNotes,
			&booking.CompletionCode,
			&booking.CompletionAttempts,
			&booking.CancellationReason,
			&booking.CancellationType,
			&booking.GracePeriodMinutes,
			&booking.StudentRating,
			&booking.HasRated,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}

		booking.CreatedAt = createdAt.Time
		booking.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// isActiveSlotViolation проверяет, что ошибка вызвана нарушением
// уникальности активного слота
func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == activeSlotConstraint
	}
	return false
}

// activeStatusStrings возвращает активные статусы в виде строк для SQL фильтров
func activeStatusStrings() []string {
	out := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}
