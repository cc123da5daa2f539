package availability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	"github.com/m04kA/TMS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/TMS-BookingService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий расписаний репетиторов
// Недельный шаблон и исключения хранятся JSONB-колонками: расписание читается
// и пишется целиком, его внутренняя структура БД не нужна
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByTutorID получает расписание репетитора
func (r *Repository) GetByTutorID(ctx context.Context, tutorID int64) (*domain.TutorAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"tutor_id",
		"timezone",
		"weekly",
		"exceptions",
		"created_at",
		"updated_at",
	).
		From("tutor_availability").
		Where(squirrel.Eq{"tutor_id": tutorID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByTutorID - build select query: %v", ErrBuildQuery, err)
	}

	var availability domain.TutorAvailability
	var weeklyRaw, exceptionsRaw []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&availability.TutorID,
		&availability.Timezone,
		&weeklyRaw,
		&exceptionsRaw,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTutorID - scan availability: %w", ErrScanRow, err)
	}

	if err := json.Unmarshal(weeklyRaw, &availability.Weekly); err != nil {
		return nil, fmt.Errorf("%w: GetByTutorID - weekly: %v", ErrDecodeSchedule, err)
	}
	if err := json.Unmarshal(exceptionsRaw, &availability.Exceptions); err != nil {
		return nil, fmt.Errorf("%w: GetByTutorID - exceptions: %v", ErrDecodeSchedule, err)
	}

	availability.CreatedAt = createdAt.Time
	availability.UpdatedAt = updatedAt.Time

	return &availability, nil
}

// Upsert создает или полностью заменяет расписание репетитора
// Вызывается редактором расписания; частичных обновлений нет
func (r *Repository) Upsert(ctx context.Context, availability *domain.TutorAvailability) (*domain.TutorAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	weeklyRaw, err := json.Marshal(availability.Weekly)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - weekly: %v", ErrEncodeSchedule, err)
	}
	exceptionsRaw, err := json.Marshal(availability.Exceptions)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - exceptions: %v", ErrEncodeSchedule, err)
	}

	query, args, err := psqlbuilder.Insert("tutor_availability").
		Columns(
			"tutor_id",
			"timezone",
			"weekly",
			"exceptions",
		).
		Values(
			availability.TutorID,
			availability.Timezone,
			weeklyRaw,
			exceptionsRaw,
		).
		Suffix(`ON CONFLICT (tutor_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			weekly = EXCLUDED.weekly,
			exceptions = EXCLUDED.exceptions,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	availability.CreatedAt = createdAt.Time
	availability.UpdatedAt = updatedAt.Time

	return availability, nil
}
