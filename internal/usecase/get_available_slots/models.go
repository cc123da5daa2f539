package get_available_slots

import (
	"time"

	"github.com/m04kA/TMS-BookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	TutorID int64     // ID репетитора
	Date    time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	TutorID int64              // ID репетитора
	Date    time.Time          // Дата, на которую запрашивались слоты
	Slots   []types.TimeString // Времена начала доступных слотов по возрастанию
}
