package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/auth"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/ledger"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// TicketPage is a page of tickets plus its pagination metadata.
type TicketPage struct {
	Tickets    []*domain.Ticket `json:"tickets"`
	Pagination Pagination       `json:"pagination"`
}

// QueryService is the read side of the ledger: purchase history,
// admin-wide listing and sales aggregates. It never mutates anything.
type QueryService struct {
	ledger ledger.Store
}

func NewQueryService(led ledger.Store) *QueryService {
	return &QueryService{ledger: led}
}

// GetTicketByCode returns the ticket when the caller owns it or is an
// admin. A ticket that exists but belongs to someone else reports
// ErrNotAuthorized, not ErrTicketNotFound.
func (q *QueryService) GetTicketByCode(ctx context.Context, caller *domain.User, code string) (*domain.Ticket, error) {
	ticket, err := q.ledger.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ledger.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}

	if !auth.Authorize(caller, auth.PermViewTicket, auth.Resource{OwnerID: ticket.PurchaserID}) {
		return nil, ErrNotAuthorized
	}
	return ticket, nil
}

// GetTicketByID is the same lookup keyed by the internal id.
func (q *QueryService) GetTicketByID(ctx context.Context, caller *domain.User, id string) (*domain.Ticket, error) {
	ticket, err := q.ledger.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ledger.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}

	if !auth.Authorize(caller, auth.PermViewTicket, auth.Resource{OwnerID: ticket.PurchaserID}) {
		return nil, ErrNotAuthorized
	}
	return ticket, nil
}

// ListPurchaserTickets pages through one purchaser's history, newest
// first. Non-admin callers may only query their own id.
func (q *QueryService) ListPurchaserTickets(ctx context.Context, caller *domain.User, purchaserID string, page, pageSize int) (*TicketPage, error) {
	if !auth.Authorize(caller, auth.PermViewTicket, auth.Resource{OwnerID: purchaserID}) {
		return nil, ErrNotAuthorized
	}

	page, pageSize = clampPaging(page, pageSize)
	tickets, total, err := q.ledger.FindByPurchaser(ctx, purchaserID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return newTicketPage(tickets, page, pageSize, total), nil
}

// ListAllTickets is the admin-wide listing.
func (q *QueryService) ListAllTickets(ctx context.Context, caller *domain.User, page, pageSize int) (*TicketPage, error) {
	if !auth.Authorize(caller, auth.PermListAllTickets, auth.Resource{}) {
		return nil, ErrNotAuthorized
	}

	page, pageSize = clampPaging(page, pageSize)
	tickets, total, err := q.ledger.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return newTicketPage(tickets, page, pageSize, total), nil
}

// SalesStatistics returns the ledger-wide aggregates, admin only.
func (q *QueryService) SalesStatistics(ctx context.Context, caller *domain.User) (*domain.SalesReport, error) {
	if !auth.Authorize(caller, auth.PermViewStatistics, auth.Resource{}) {
		return nil, ErrNotAuthorized
	}

	report, err := q.ledger.AggregateSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	return report, nil
}

func clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func newTicketPage(tickets []*domain.Ticket, page, pageSize int, total int64) *TicketPage {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}
	return &TicketPage{
		Tickets: tickets,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}
}
