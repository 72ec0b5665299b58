package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/catalog"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/identity"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/ledger"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/notification"
	"github.com/google/uuid"
)

// codeRetries bounds how many fresh codes are tried when the ledger
// reports a code collision.
const codeRetries = 3

// CartClearer is the slice of the cart service the reconciler needs.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

// Outcome is what a checkout call reports back.
type Outcome struct {
	Ticket           *domain.Ticket `json:"ticket"`
	FulfilledCount   int            `json:"fulfilled_count"`
	UnavailableCount int            `json:"unavailable_count"`
}

// Timeouts bound the individual accessor calls inside one checkout. No
// call in the flow runs without a deadline.
type Timeouts struct {
	Identity time.Duration
	Catalog  time.Duration
	Ledger   time.Duration
	Cart     time.Duration
	Notify   time.Duration
}

func (t *Timeouts) applyDefaults() {
	if t.Identity <= 0 {
		t.Identity = 2 * time.Second
	}
	if t.Catalog <= 0 {
		t.Catalog = 2 * time.Second
	}
	if t.Ledger <= 0 {
		t.Ledger = 5 * time.Second
	}
	if t.Cart <= 0 {
		t.Cart = 2 * time.Second
	}
	if t.Notify <= 0 {
		t.Notify = 10 * time.Second
	}
}

// Service is the checkout reconciler: it turns requested cart lines into
// per-line fulfillment outcomes against live stock, records the result as
// one immutable ticket and clears the cart when anything was purchased.
type Service struct {
	users    identity.Store
	catalog  catalog.Accessor
	ledger   ledger.Store
	cart     CartClearer
	notifier notification.Sink
	timeouts Timeouts
}

func NewService(
	users identity.Store,
	cat catalog.Accessor,
	led ledger.Store,
	cart CartClearer,
	notifier notification.Sink,
	timeouts Timeouts,
) *Service {
	timeouts.applyDefaults()
	return &Service{
		users:    users,
		catalog:  cat,
		ledger:   led,
		cart:     cart,
		notifier: notifier,
		timeouts: timeouts,
	}
}

// ProcessCheckout reconciles the requested lines in order. Per-line
// availability problems are recorded on the ticket, never returned as
// errors; the only fatal mid-transaction failure is the ledger write.
func (s *Service) ProcessCheckout(ctx context.Context, purchaserID string, lines []domain.LineItemRequest) (*Outcome, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s quantity %d", ErrInvalidQuantity, line.ProductID, line.Quantity)
		}
	}

	purchaser, err := s.resolvePurchaser(ctx, purchaserID)
	if err != nil {
		return nil, err
	}

	var (
		fulfilled   []domain.FulfilledLine
		unavailable []domain.UnavailableLine
		total       float64
		itemCount   int
	)

	for _, line := range lines {
		f, u := s.reconcileLine(ctx, line)
		if f != nil {
			fulfilled = append(fulfilled, *f)
			total += f.UnitPrice * float64(f.Quantity)
			itemCount += f.Quantity
		}
		if u != nil {
			unavailable = append(unavailable, *u)
		}
	}

	status := domain.TicketStatusCancelled
	if len(fulfilled) > 0 {
		status = domain.TicketStatusCompleted
	}

	ticket := &domain.Ticket{
		ID:               uuid.New().String(),
		PurchaserID:      purchaser.ID,
		PurchaserEmail:   purchaser.Email,
		FulfilledLines:   fulfilled,
		UnavailableLines: unavailable,
		Total:            total,
		ItemCount:        itemCount,
		Status:           status,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.writeTicket(ctx, ticket); err != nil {
		return nil, err
	}

	if status == domain.TicketStatusCompleted {
		clearCtx, cancel := context.WithTimeout(ctx, s.timeouts.Cart)
		if clearErr := s.cart.ClearCart(clearCtx, purchaser.ID); clearErr != nil {
			log.Printf("failed to clear cart for user %s after ticket %s: %v", purchaser.ID, ticket.Code, clearErr)
		}
		cancel()
	}

	// Fire-and-forget: the confirmation is never awaited and its failure
	// never reaches the caller.
	go s.sendNotification(ticket, purchaser)

	return &Outcome{
		Ticket:           ticket,
		FulfilledCount:   len(fulfilled),
		UnavailableCount: len(unavailable),
	}, nil
}

func (s *Service) resolvePurchaser(ctx context.Context, purchaserID string) (*domain.User, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeouts.Identity)
	defer cancel()

	user, err := s.users.FindByID(lookupCtx, purchaserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrPurchaserNotFound
		}
		return nil, fmt.Errorf("failed to resolve purchaser: %w", err)
	}
	if user.Email == "" {
		return nil, ErrPurchaserNoEmail
	}
	return user, nil
}

// reconcileLine decides one requested line. A partially available line
// yields both a fulfilled and an unavailable record.
func (s *Service) reconcileLine(ctx context.Context, line domain.LineItemRequest) (*domain.FulfilledLine, *domain.UnavailableLine) {
	readCtx, cancel := context.WithTimeout(ctx, s.timeouts.Catalog)
	product, err := s.catalog.GetStock(readCtx, line.ProductID)
	cancel()
	if err != nil {
		// A missing product and a timed-out read both degrade to an
		// unavailable line rather than aborting the whole checkout.
		if !errors.Is(err, catalog.ErrProductNotFound) {
			log.Printf("catalog read for product %s failed, treating as not found: %v", line.ProductID, err)
		}
		return nil, &domain.UnavailableLine{
			ProductID:         line.ProductID,
			Name:              "unknown product",
			RequestedQuantity: line.Quantity,
			AvailableQuantity: 0,
			Reason:            domain.ReasonNotFound,
		}
	}

	if product.Stock <= 0 {
		return nil, &domain.UnavailableLine{
			ProductID:         product.ID,
			Name:              product.Name,
			RequestedQuantity: line.Quantity,
			AvailableQuantity: 0,
			Reason:            domain.ReasonInsufficientStock,
		}
	}

	take := line.Quantity
	if product.Stock < take {
		take = product.Stock
	}

	decCtx, cancel := context.WithTimeout(ctx, s.timeouts.Catalog)
	_, decErr := s.catalog.DecrementStock(decCtx, product.ID, take)
	cancel()
	if decErr != nil {
		// A concurrent checkout consumed the stock between our read and
		// the decrement. One re-check re-derives what is left; the
		// decrement is not retried.
		return nil, s.unavailableAfterConflict(ctx, product, line.Quantity, decErr)
	}

	fulfilledLine := &domain.FulfilledLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  take,
	}

	if take < line.Quantity {
		return fulfilledLine, &domain.UnavailableLine{
			ProductID:         product.ID,
			Name:              product.Name,
			RequestedQuantity: line.Quantity,
			AvailableQuantity: take,
			Reason:            domain.ReasonInsufficientStock,
		}
	}
	return fulfilledLine, nil
}

func (s *Service) unavailableAfterConflict(ctx context.Context, product *domain.Product, requested int, decErr error) *domain.UnavailableLine {
	if !errors.Is(decErr, catalog.ErrInvalidDecrement) && !errors.Is(decErr, catalog.ErrProductNotFound) {
		log.Printf("stock decrement for product %s failed: %v", product.ID, decErr)
	}

	available := 0
	readCtx, cancel := context.WithTimeout(ctx, s.timeouts.Catalog)
	current, err := s.catalog.GetStock(readCtx, product.ID)
	cancel()
	if err == nil {
		available = current.Stock
	}

	return &domain.UnavailableLine{
		ProductID:         product.ID,
		Name:              product.Name,
		RequestedQuantity: requested,
		AvailableQuantity: available,
		Reason:            domain.ReasonInsufficientStock,
	}
}

// writeTicket persists the ticket, regenerating the code on a collision.
func (s *Service) writeTicket(ctx context.Context, ticket *domain.Ticket) error {
	var err error
	for attempt := 0; attempt < codeRetries; attempt++ {
		ticket.Code = ledger.NewCode()

		writeCtx, cancel := context.WithTimeout(ctx, s.timeouts.Ledger)
		err = s.ledger.Create(writeCtx, ticket)
		cancel()

		if err == nil {
			return nil
		}
		if !errors.Is(err, ledger.ErrDuplicateCode) {
			return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
		}
		log.Printf("ticket code collision on %s, regenerating (attempt %d)", ticket.Code, attempt+1)
	}
	return fmt.Errorf("%w: code collisions exhausted retries: %v", ErrLedgerWriteFailed, err)
}

func (s *Service) sendNotification(ticket *domain.Ticket, purchaser *domain.User) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.Notify)
	defer cancel()

	if err := s.notifier.NotifyPurchase(ctx, ticket, purchaser.Email, purchaser.FullName()); err != nil {
		log.Printf("purchase notification for ticket %s failed: %v", ticket.Code, err)
	}
}
