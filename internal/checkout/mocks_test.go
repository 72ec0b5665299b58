package checkout

import (
	"context"
	"sync"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/catalog"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/identity"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/ledger"
)

type mockIdentityStore struct {
	m     sync.RWMutex
	users map[string]*domain.User
}

func newMockIdentityStore(users ...*domain.User) *mockIdentityStore {
	s := &mockIdentityStore{users: make(map[string]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *mockIdentityStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *mockIdentityStore) Insert(_ context.Context, user *domain.User) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.users[user.ID] = user
	return nil
}

// mockCatalog implements the same conditional check-and-subtract the real
// accessor performs at the storage layer.
type mockCatalog struct {
	m        sync.Mutex
	products map[string]*domain.Product

	// failDecrementOnce makes the next decrement of the given product
	// report a conflict, simulating a concurrent buyer.
	failDecrementOnce map[string]bool
	getErr            error
}

func newMockCatalog(products ...*domain.Product) *mockCatalog {
	c := &mockCatalog{
		products:          make(map[string]*domain.Product),
		failDecrementOnce: make(map[string]bool),
	}
	for _, p := range products {
		copied := *p
		c.products[p.ID] = &copied
	}
	return c
}

func (c *mockCatalog) GetStock(_ context.Context, productID string) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (c *mockCatalog) DecrementStock(_ context.Context, productID string, amount int) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	if c.failDecrementOnce[productID] {
		delete(c.failDecrementOnce, productID)
		return nil, catalog.ErrInvalidDecrement
	}
	if amount <= 0 || amount > p.Stock {
		return nil, catalog.ErrInvalidDecrement
	}
	p.Stock -= amount
	copied := *p
	return &copied, nil
}

func (c *mockCatalog) ListAvailable(context.Context) ([]*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	var out []*domain.Product
	for _, p := range c.products {
		if p.Stock > 0 {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (c *mockCatalog) Insert(_ context.Context, product *domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	copied := *product
	c.products[product.ID] = &copied
	return nil
}

func (c *mockCatalog) stock(productID string) int {
	c.m.Lock()
	defer c.m.Unlock()
	if p, ok := c.products[productID]; ok {
		return p.Stock
	}
	return -1
}

type mockLedger struct {
	m       sync.Mutex
	byCode  map[string]*domain.Ticket
	created []*domain.Ticket

	createErr error
	// collideNext forces ErrDuplicateCode on the next n creates.
	collideNext int
}

func newMockLedger() *mockLedger {
	return &mockLedger{byCode: make(map[string]*domain.Ticket)}
}

func (l *mockLedger) Create(_ context.Context, ticket *domain.Ticket) error {
	l.m.Lock()
	defer l.m.Unlock()
	if l.createErr != nil {
		return l.createErr
	}
	if l.collideNext > 0 {
		l.collideNext--
		return ledger.ErrDuplicateCode
	}
	if _, exists := l.byCode[ticket.Code]; exists {
		return ledger.ErrDuplicateCode
	}
	copied := *ticket
	l.byCode[ticket.Code] = &copied
	l.created = append(l.created, &copied)
	return nil
}

func (l *mockLedger) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	l.m.Lock()
	defer l.m.Unlock()
	for _, t := range l.created {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, ledger.ErrTicketNotFound
}

func (l *mockLedger) FindByCode(_ context.Context, code string) (*domain.Ticket, error) {
	l.m.Lock()
	defer l.m.Unlock()
	t, ok := l.byCode[code]
	if !ok {
		return nil, ledger.ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

func (l *mockLedger) FindByPurchaser(_ context.Context, purchaserID string, page, pageSize int) ([]*domain.Ticket, int64, error) {
	l.m.Lock()
	defer l.m.Unlock()
	var matched []*domain.Ticket
	for i := len(l.created) - 1; i >= 0; i-- {
		if l.created[i].PurchaserID == purchaserID {
			matched = append(matched, l.created[i])
		}
	}
	return pageOf(matched, page, pageSize), int64(len(matched)), nil
}

func (l *mockLedger) FindAll(_ context.Context, page, pageSize int) ([]*domain.Ticket, int64, error) {
	l.m.Lock()
	defer l.m.Unlock()
	var all []*domain.Ticket
	for i := len(l.created) - 1; i >= 0; i-- {
		all = append(all, l.created[i])
	}
	return pageOf(all, page, pageSize), int64(len(all)), nil
}

func (l *mockLedger) AggregateSales(context.Context) (*domain.SalesReport, error) {
	l.m.Lock()
	defer l.m.Unlock()
	report := &domain.SalesReport{}
	for _, t := range l.created {
		report.Summary.TotalRevenue += t.Total
		report.Summary.TotalTickets++
		report.Summary.TotalItems += int64(t.ItemCount)
		if t.Status == domain.TicketStatusCompleted {
			report.Summary.CompletedCount++
		}
	}
	return report, nil
}

func (l *mockLedger) Close() error { return nil }

func (l *mockLedger) createdCount() int {
	l.m.Lock()
	defer l.m.Unlock()
	return len(l.created)
}

func pageOf(tickets []*domain.Ticket, page, pageSize int) []*domain.Ticket {
	start := (page - 1) * pageSize
	if start >= len(tickets) {
		return nil
	}
	end := start + pageSize
	if end > len(tickets) {
		end = len(tickets)
	}
	return tickets[start:end]
}

type mockCartClearer struct {
	m        sync.Mutex
	cleared  []string
	clearErr error
}

func (c *mockCartClearer) ClearCart(_ context.Context, userID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.clearErr != nil {
		return c.clearErr
	}
	c.cleared = append(c.cleared, userID)
	return nil
}

func (c *mockCartClearer) clearedFor(userID string) int {
	c.m.Lock()
	defer c.m.Unlock()
	count := 0
	for _, id := range c.cleared {
		if id == userID {
			count++
		}
	}
	return count
}

// blockingIdentityStore parks every lookup until the call's context
// expires.
type blockingIdentityStore struct{}

func (blockingIdentityStore) FindByID(ctx context.Context, _ string) (*domain.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingIdentityStore) Insert(context.Context, *domain.User) error { return nil }

// blockingCartClearer parks until the call's context expires.
type blockingCartClearer struct{}

func (blockingCartClearer) ClearCart(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

type notifyCall struct {
	ticket *domain.Ticket
	email  string
	name   string
}

type mockSink struct {
	calls     chan notifyCall
	notifyErr error
}

func newMockSink() *mockSink {
	return &mockSink{calls: make(chan notifyCall, 16)}
}

func (s *mockSink) NotifyPurchase(_ context.Context, ticket *domain.Ticket, email, name string) error {
	s.calls <- notifyCall{ticket: ticket, email: email, name: name}
	return s.notifyErr
}
