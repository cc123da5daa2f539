package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// BookingEvent уведомление о переходе бронирования
type BookingEvent struct {
	BookingID int64  `json:"booking_id"`
	TutorID   int64  `json:"tutor_id"`
	StudentID int64  `json:"student_id"`
	Status    string `json:"status"`
	Action    string `json:"action"`
	Actor     string `json:"actor"`
}

// Client клиент для работы с NotifyService
// Уведомления отправляются best-effort: ошибка доставки логируется и не
// влияет на результат операции с бронированием
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotifyService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NotifyBookingEvent отправляет уведомление об изменении бронирования
func (c *Client) NotifyBookingEvent(ctx context.Context, event *BookingEvent) error {
	url := fmt.Sprintf("%s/internal/notifications/booking-events", c.baseURL)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	return nil
}
