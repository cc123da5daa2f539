package paymentservice

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

// Client клиент для работы с PaymentService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента PaymentService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CollectPayment инициирует списание оплаты за завершенное занятие
// Вызывается ровно один раз на переход бронирования в completed
// Ошибка списания логируется вызывающей стороной и не откатывает завершение
func (c *Client) CollectPayment(ctx context.Context, req *CollectRequest) (*CollectResponse, error) {
	url := fmt.Sprintf("%s/internal/payments/collect", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
		return nil, ErrPaymentDeclined
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var result CollectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("CollectPayment: booking_id=%d amount=%.2f transaction=%s", req.BookingID, req.Amount, result.TransactionID)
	return &result, nil
}
