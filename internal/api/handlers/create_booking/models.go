package create_booking

import (
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	createBooking "github.com/m04kA/TMS-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	TutorID       int64   `json:"tutorId"`
	BookingDate   string  `json:"bookingDate"` // "2025-10-15"
	StartTime     string  `json:"startTime"`   // "10:00"
	Price         float64 `json:"price"`
	PaymentMethod string  `json:"paymentMethod"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                 int64   `json:"id"`
	TutorID            int64   `json:"tutorId"`
	StudentID          int64   `json:"studentId"`
	BookingDate        string  `json:"bookingDate"`
	StartTime          string  `json:"startTime"`
	Status             string  `json:"status"`
	Price              float64 `json:"price"`
	PaymentMethod      string  `json:"paymentMethod"`
	GracePeriodMinutes int     `json:"gracePeriodMinutes"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Студент берется из аутентификации, а не из тела запроса
func (r *CreateBookingRequest) ToUseCaseRequest(studentID int64) (*createBooking.Request, error) {
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		TutorID:       r.TutorID,
		StudentID:     studentID,
		Date:          bookingDate,
		StartTime:     startTime,
		Price:         r.Price,
		PaymentMethod: r.PaymentMethod,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                 resp.ID,
		TutorID:            resp.TutorID,
		StudentID:          resp.StudentID,
		BookingDate:        resp.BookingDate.Format(domain.DateFormat),
		StartTime:          resp.StartTime.String(),
		Status:             resp.Status,
		Price:              resp.Price,
		PaymentMethod:      resp.PaymentMethod,
		GracePeriodMinutes: resp.GracePeriodMinutes,
		CreatedAt:          resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          resp.UpdatedAt.Format(time.RFC3339),
	}
}
