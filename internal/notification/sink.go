package notification

import (
	"context"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
)

// Sink delivers purchase confirmations. Delivery is best effort: the
// checkout flow fires it from a detached goroutine, logs failures and
// never lets them affect the transaction outcome.
type Sink interface {
	NotifyPurchase(ctx context.Context, ticket *domain.Ticket, purchaserEmail, purchaserName string) error
}
