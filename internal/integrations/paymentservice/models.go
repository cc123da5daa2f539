package paymentservice

// CollectRequest запрос на списание оплаты за завершенное занятие
type CollectRequest struct {
	BookingID     int64   `json:"booking_id"`
	StudentID     int64   `json:"student_id"`
	TutorID       int64   `json:"tutor_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

// CollectResponse ответ платежного сервиса
type CollectResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// ErrorResponse модель ошибки от PaymentService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
