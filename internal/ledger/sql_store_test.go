package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, store.RunMigrations("./migrations"))
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTicket(id string) *domain.Ticket {
	return &domain.Ticket{
		ID:             id,
		Code:           "TICKET-1700000000000-" + id,
		PurchaserID:    "user-1",
		PurchaserEmail: "buyer@example.com",
		FulfilledLines: []domain.FulfilledLine{
			{ProductID: "p1", Name: "Keyboard", UnitPrice: 80, Quantity: 2},
			{ProductID: "p2", Name: "Mouse", UnitPrice: 20, Quantity: 1},
		},
		UnavailableLines: []domain.UnavailableLine{
			{ProductID: "p3", Name: "Monitor", RequestedQuantity: 4, AvailableQuantity: 1, Reason: domain.ReasonInsufficientStock},
		},
		Total:     180,
		ItemCount: 3,
		Status:    domain.TicketStatusCompleted,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestSQLStore_CreateAndFindByCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ticket := sampleTicket("t1")
	require.NoError(t, store.Create(ctx, ticket))

	got, err := store.FindByCode(ctx, ticket.Code)
	require.NoError(t, err)

	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, ticket.PurchaserID, got.PurchaserID)
	assert.Equal(t, ticket.PurchaserEmail, got.PurchaserEmail)
	assert.Equal(t, ticket.Total, got.Total)
	assert.Equal(t, ticket.ItemCount, got.ItemCount)
	assert.Equal(t, ticket.Status, got.Status)
	assert.Equal(t, ticket.FulfilledLines, got.FulfilledLines)
	assert.Equal(t, ticket.UnavailableLines, got.UnavailableLines)
}

func TestSQLStore_FindByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ticket := sampleTicket("t1")
	require.NoError(t, store.Create(ctx, ticket))

	got, err := store.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, ticket.Code, got.Code)

	_, err = store.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestSQLStore_DuplicateCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleTicket("t1")
	require.NoError(t, store.Create(ctx, first))

	second := sampleTicket("t2")
	second.Code = first.Code
	assert.ErrorIs(t, store.Create(ctx, second), ErrDuplicateCode)

	// The failed insert must not leave partial rows behind.
	_, err := store.FindByID(ctx, "t2")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestSQLStore_FindByPurchaserPaged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 7; i++ {
		ticket := sampleTicket(fmt.Sprintf("t%d", i))
		ticket.Code = fmt.Sprintf("TICKET-%d-AAAA", i)
		ticket.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Create(ctx, ticket))
	}
	other := sampleTicket("other")
	other.PurchaserID = "user-2"
	other.Code = "TICKET-other"
	require.NoError(t, store.Create(ctx, other))

	tickets, total, err := store.FindByPurchaser(ctx, "user-1", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, tickets, 3)

	// Newest first.
	assert.Equal(t, "t6", tickets[0].ID)
	assert.Equal(t, "t5", tickets[1].ID)
	assert.Equal(t, "t4", tickets[2].ID)

	tickets, total, err = store.FindByPurchaser(ctx, "user-1", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, tickets, 1)
	assert.Equal(t, "t0", tickets[0].ID)
}

func TestSQLStore_FindAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	purchasers := []string{"user-1", "user-2", "user-3"}
	for i, purchaser := range purchasers {
		ticket := sampleTicket(fmt.Sprintf("t%d", i))
		ticket.PurchaserID = purchaser
		ticket.Code = fmt.Sprintf("TICKET-%d-BBBB", i)
		ticket.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Create(ctx, ticket))
	}

	tickets, total, err := store.FindAll(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, tickets, 3)
	assert.Equal(t, "t2", tickets[0].ID)
}

func TestSQLStore_AggregateSales(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	completed := sampleTicket("t1")
	require.NoError(t, store.Create(ctx, completed))

	cancelled := &domain.Ticket{
		ID:          "t2",
		Code:        "TICKET-cancelled",
		PurchaserID: "user-2",
		UnavailableLines: []domain.UnavailableLine{
			{ProductID: "p1", Name: "Keyboard", RequestedQuantity: 1, Reason: domain.ReasonInsufficientStock},
		},
		Status:    domain.TicketStatusCancelled,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Create(ctx, cancelled))

	report, err := store.AggregateSales(ctx)
	require.NoError(t, err)

	assert.Equal(t, 180.0, report.Summary.TotalRevenue)
	assert.Equal(t, int64(2), report.Summary.TotalTickets)
	assert.Equal(t, int64(3), report.Summary.TotalItems)
	assert.Equal(t, int64(1), report.Summary.CompletedCount)

	require.Len(t, report.TopProducts, 2)
	top := report.TopProducts[0]
	assert.Equal(t, "p1", top.ProductID)
	assert.Equal(t, "Keyboard", top.Name)
	assert.Equal(t, int64(2), top.QuantitySold)
	assert.Equal(t, 160.0, top.Revenue)
}

func TestSQLStore_EmptyLedgerAggregates(t *testing.T) {
	store := newTestStore(t)

	report, err := store.AggregateSales(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Summary.TotalRevenue)
	assert.Equal(t, int64(0), report.Summary.TotalTickets)
	assert.Empty(t, report.TopProducts)
}
