package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// PurchaseStore commits a purchase as one all-or-nothing transaction:
//  1. the buyer still exists;
//  2. the event exists, is not disabled and has at least Quantity tickets left,
//     in which case RemainingQuantity is decremented by Quantity;
//  3. no registration with the same id exists, in which case it is inserted.
//
// When any condition fails nothing is written and a *domain.ConflictError is
// returned. Other errors are infrastructure failures.
type PurchaseStore interface {
	CommitPurchase(ctx context.Context, reg *domain.Registration) error
}
