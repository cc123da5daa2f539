package transition_booking

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/m04kA/TMS-BookingService/internal/domain"
)

// generateCompletionCode генерирует 6-значный цифровой код завершения
// Код выдаётся при старте занятия и показывается репетитору: студент вводит
// его при подтверждении завершения
func generateCompletionCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < domain.CompletionCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate completion code: %v", ErrInternal, err)
	}

	return fmt.Sprintf("%0*d", domain.CompletionCodeLength, n), nil
}
