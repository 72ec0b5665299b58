package ledger

import (
	"context"
	"errors"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrDuplicateCode means the generated ticket code already exists in
	// the ledger. The caller regenerates the code and retries the write.
	ErrDuplicateCode = errors.New("ticket code already exists")
)

// Store persists immutable purchase tickets. Tickets are append-only:
// there is no update or delete operation.
type Store interface {
	// Create persists the ticket. The code column carries a uniqueness
	// constraint; a collision surfaces as ErrDuplicateCode.
	Create(ctx context.Context, ticket *domain.Ticket) error

	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindByCode(ctx context.Context, code string) (*domain.Ticket, error)

	// FindByPurchaser returns one page of the purchaser's tickets ordered
	// by creation time descending, plus the total ticket count for that
	// purchaser. page starts at 1.
	FindByPurchaser(ctx context.Context, purchaserID string, page, pageSize int) ([]*domain.Ticket, int64, error)

	// FindAll is the admin-wide listing, same ordering and paging.
	FindAll(ctx context.Context, page, pageSize int) ([]*domain.Ticket, int64, error)

	// AggregateSales computes ledger-wide revenue/volume figures and the
	// top products by quantity sold.
	AggregateSales(ctx context.Context) (*domain.SalesReport, error)

	Close() error
}
