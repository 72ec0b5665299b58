package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/cart"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/catalog"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/checkout"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/metrics"
	"github.com/go-chi/chi/v5"
)

type PurchaseHandler struct {
	reconciler *checkout.Service
	query      *checkout.QueryService
	carts      *cart.Service
	metrics    *metrics.ServerMetrics
}

func NewPurchaseHandler(reconciler *checkout.Service, query *checkout.QueryService, carts *cart.Service, m *metrics.ServerMetrics) *PurchaseHandler {
	return &PurchaseHandler{reconciler: reconciler, query: query, carts: carts, metrics: m}
}

type processPurchaseRequest struct {
	Products []domain.LineItemRequest `json:"products"`
}

// POST /api/purchases/process
// Lines come from the request body when present, otherwise from the
// caller's stored cart.
func (h *PurchaseHandler) ProcessPurchase(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req processPurchaseRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	lines := req.Products
	if len(lines) == 0 {
		userCart, err := h.carts.GetCart(r.Context(), principal.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "cart_unavailable", "could not load cart")
			return
		}
		for _, item := range userCart.Items {
			lines = append(lines, domain.LineItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}

	outcome, err := h.reconciler.ProcessCheckout(r.Context(), principal.ID, lines)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.metrics.Checkouts.WithLabelValues(outcome.Ticket.Status.String()).Inc()
	respondJSON(w, http.StatusCreated, outcome)
}

func (h *PurchaseHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, checkout.ErrPurchaserNotFound):
		respondError(w, http.StatusNotFound, "purchaser_not_found", err.Error())
	case errors.Is(err, checkout.ErrPurchaserNoEmail):
		respondError(w, http.StatusUnprocessableEntity, "purchaser_no_email", err.Error())
	case errors.Is(err, checkout.ErrLedgerWriteFailed):
		respondError(w, http.StatusInternalServerError, "ledger_write_failed", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// GET /api/purchases/my-tickets?page=&page_size=
func (h *PurchaseHandler) MyTickets(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	page, pageSize := pagingParams(r)
	result, err := h.query.ListPurchaserTickets(r.Context(), principal, principal.ID, page, pageSize)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /api/purchases/ticket/code/{code}
func (h *PurchaseHandler) TicketByCode(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	code := chi.URLParam(r, "code")
	ticket, err := h.query.GetTicketByCode(r.Context(), principal, code)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// GET /api/purchases/admin/all-tickets?page=&page_size=
func (h *PurchaseHandler) AllTickets(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	page, pageSize := pagingParams(r)

	result, err := h.query.ListAllTickets(r.Context(), principal, page, pageSize)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /api/purchases/admin/statistics
func (h *PurchaseHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	report, err := h.query.SalesStatistics(r.Context(), principal)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *PurchaseHandler) respondQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrTicketNotFound):
		respondError(w, http.StatusNotFound, "ticket_not_found", err.Error())
	case errors.Is(err, checkout.ErrNotAuthorized):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	userCart, err := h.carts.GetCart(r.Context(), principal.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, userCart)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id and a positive quantity are required")
		return
	}

	item := domain.CartItem{ProductID: req.ProductID, Quantity: req.Quantity}
	if err := h.carts.AddItem(r.Context(), principal.ID, item); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PUT /api/cart/items/{productID}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.carts.UpdateQuantity(r.Context(), principal.ID, productID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) || errors.Is(err, cart.ErrCartNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// DELETE /api/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.carts.RemoveItem(r.Context(), principal.ID, productID); err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			respondError(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.carts.ClearCart(r.Context(), principal.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type ProductHandler struct {
	catalog catalog.Accessor
}

func NewProductHandler(cat catalog.Accessor) *ProductHandler {
	return &ProductHandler{catalog: cat}
}

// GET /api/products
func (h *ProductHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAvailable(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func pagingParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}
