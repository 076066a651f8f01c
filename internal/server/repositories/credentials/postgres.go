// Package credentials stores the salt and salted hash of each account.
package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, credential *models.Credential) error {
	query := `
		INSERT INTO account_credential (account_id, salted_hash, salt)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, credential.AccountID, credential.SaltedHash, credential.Salt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
