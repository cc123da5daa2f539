package models

import (
	"errors"
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetStudentBookingsRequest запрос на получение бронирований студента
type GetStudentBookingsRequest struct {
	StudentID int64   `json:"studentId"`
	Status    *string `json:"status,omitempty"`
}

// GetTutorBookingsRequest запрос на получение бронирований репетитора
type GetTutorBookingsRequest struct {
	TutorID         int64      `json:"tutorId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить терминальные бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetTutorBookingsRequest) ToDomainFilter() (domain.TutorBookingsFilter, error) {
	filter := domain.TutorBookingsFilter{
		TutorID:         r.TutorID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// RateBookingRequest запрос на оценку завершенного занятия
type RateBookingRequest struct {
	StudentID int64 `json:"studentId"`
	Rating    int   `json:"rating"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64   `json:"id"`
	TutorID       int64   `json:"tutorId"`
	StudentID     int64   `json:"studentId"`
	BookingDate   string  `json:"bookingDate"` // "2025-10-15"
	StartTime     string  `json:"startTime"`   // "10:00"
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
	PaymentMethod string  `json:"paymentMethod"`

	// Код завершения заполняется только в ответах для репетитора
	CompletionCode     *string `json:"completionCode,omitempty"`
	CompletionType     *string `json:"completionType,omitempty"`
	CompletionNotes    *string `json:"completionNotes,omitempty"`
	CompletionAttempts int     `json:"completionAttempts"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancellationType   *string `json:"cancellationType,omitempty"`

	GracePeriodMinutes int  `json:"gracePeriodMinutes"`
	StudentRating      *int `json:"studentRating,omitempty"`
	HasRated           bool `json:"hasRated"`

	StartedAt   *string `json:"startedAt,omitempty"`   // ISO 8601 format
	CompletedAt *string `json:"completedAt,omitempty"` // ISO 8601 format
	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601 format
	RestoredAt  *string `json:"restoredAt,omitempty"`  // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
// Код завершения не включается: он добавляется отдельно для репетитора
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		TutorID:            b.TutorID,
		StudentID:          b.StudentID,
		BookingDate:        b.BookingDate.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		Status:             string(b.Status),
		Price:              b.Price,
		PaymentMethod:      b.PaymentMethod,
		CompletionNotes:    b.CompletionNotes,
		CompletionAttempts: b.CompletionAttempts,
		CancellationReason: b.CancellationReason,
		GracePeriodMinutes: b.GracePeriodMinutes,
		StudentRating:      b.StudentRating,
		HasRated:           b.HasRated,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CompletionType != nil {
		completionType := string(*b.CompletionType)
		resp.CompletionType = &completionType
	}

	if b.CancellationType != nil {
		cancellationType := string(*b.CancellationType)
		resp.CancellationType = &cancellationType
	}

	resp.StartedAt = formatTimePtr(b.StartedAt)
	resp.CompletedAt = formatTimePtr(b.CompletedAt)
	resp.CancelledAt = formatTimePtr(b.CancelledAt)
	resp.RestoredAt = formatTimePtr(b.RestoredAt)

	return resp
}

// FromDomainBookingForTutor конвертирует domain модель в DTO для репетитора
// В отличие от FromDomainBooking включает код завершения идущего занятия
func FromDomainBookingForTutor(b *domain.Booking) *BookingResponse {
	resp := FromDomainBooking(b)
	if resp == nil {
		return nil
	}

	if b.Status == domain.StatusInProgress && b.CompletionCode != nil {
		resp.CompletionCode = b.CompletionCode
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !domain.ValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
