// Package accounts stores registered accounts in PostgreSQL.
package accounts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/models"
)

var uniqueConstraints = map[string]error{
	"account_username_key": common.ErrUsernameExists,
	"account_email_key":    common.ErrEmailExists,
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts account and returns it with the generated ID. Duplicate
// usernames and emails surface as common.ErrUsernameExists and
// common.ErrEmailExists.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO account (firstname, lastname, username, email, phone, account_role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING account_id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.FirstName, account.LastName, account.Username, account.Email, account.Phone, account.Role).Scan(&account.ID)

	if err != nil {
		if known := dbx.TranslateUniqueViolation(err, uniqueConstraints); known != nil {
			return nil, known
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// FindByEmail returns every account with the given email joined with its
// credential. An unknown email yields no rows and no error.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) ([]*models.AccountWithCredential, error) {
	query :=
		`SELECT a.account_id, a.firstname, a.lastname, a.username, a.email, a.phone, a.account_role,
		        c.salted_hash, c.salt
		 FROM account a
		 INNER JOIN account_credential c ON c.account_id = a.account_id
		 WHERE a.email = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AccountWithCredential
	for rows.Next() {
		a := &models.AccountWithCredential{}
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Username, &a.Email, &a.Phone, &a.Role,
			&a.SaltedHash, &a.Salt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
