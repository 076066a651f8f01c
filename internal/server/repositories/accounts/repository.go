package accounts

import (
	"context"

	"github.com/dmitrijs2005/library/internal/server/models"
)

// Repository persists library accounts.
type Repository interface {
	// Create inserts the account and fills in its ID. Username and email
	// collisions yield common.ErrUsernameExists / common.ErrEmailExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByEmail returns every account+credential row with the given email.
	// Callers treat anything other than exactly one row as a failure.
	FindByEmail(ctx context.Context, email string) ([]*models.AccountWithCredential, error)
}
