package get_available_slots

import (
	"time"

	"github.com/m04kA/TMS-BookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/TMS-BookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	TutorID int64    `json:"tutorId"`
	Date    string   `json:"date"`
	Slots   []string `json:"slots"` // времена начала "HH:MM" по возрастанию
}

// ToUseCaseRequest создает запрос use case из параметров запроса
func ToUseCaseRequest(tutorID int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		TutorID: tutorID,
		Date:    date,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		TutorID: resp.TutorID,
		Date:    resp.Date.Format(domain.DateFormat),
		Slots:   slots,
	}
}
