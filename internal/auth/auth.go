// Package auth holds the permission checks for business operations.
// Authorization is a pure function of the principal, the permission and
// the resource being touched; there is no dynamic lookup table.
package auth

import "github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"

type Permission string

const (
	PermCreateProduct  Permission = "create-product"
	PermUpdateProduct  Permission = "update-product"
	PermDeleteProduct  Permission = "delete-product"
	PermViewCart       Permission = "view-cart"
	PermPurchase       Permission = "purchase"
	PermViewTicket     Permission = "view-ticket"
	PermListAllTickets Permission = "list-all-tickets"
	PermViewStatistics Permission = "view-statistics"
)

// Resource carries the ownership context a permission check may need.
// OwnerID is the user id that owns the cart, ticket or profile.
type Resource struct {
	OwnerID string
}

// Authorize reports whether the principal may perform the operation.
// A nil user is never authorized.
func Authorize(user *domain.User, perm Permission, res Resource) bool {
	if user == nil {
		return false
	}

	switch perm {
	case PermCreateProduct, PermUpdateProduct, PermDeleteProduct,
		PermListAllTickets, PermViewStatistics:
		return user.IsAdmin()
	case PermViewCart, PermViewTicket:
		return user.ID == res.OwnerID || user.IsAdmin()
	case PermPurchase:
		return user.ID != ""
	default:
		return false
	}
}
