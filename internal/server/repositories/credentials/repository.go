package credentials

import (
	"context"

	"github.com/dmitrijs2005/library/internal/server/models"
)

// Repository persists the salted password hash of an account.
type Repository interface {
	Create(ctx context.Context, credential *models.Credential) error
}
