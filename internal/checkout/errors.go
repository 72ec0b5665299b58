package checkout

import "errors"

var (
	// Input errors, rejected before any side effect.
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrInvalidQuantity = errors.New("requested quantity must be a positive integer")

	// Resolution errors, abort before any stock mutation.
	ErrPurchaserNotFound = errors.New("purchaser not found")
	ErrPurchaserNoEmail  = errors.New("purchaser has no email address")

	// ErrLedgerWriteFailed is the only fatal mid-transaction failure.
	// Stock already decremented for earlier lines is not rolled back.
	ErrLedgerWriteFailed = errors.New("failed to record purchase ticket")

	// Read-side errors. Authorization failures are distinct from
	// not-found so a client can tell "doesn't exist" from "not yours".
	ErrTicketNotFound = errors.New("ticket not found")
	ErrNotAuthorized  = errors.New("not authorized")
)
