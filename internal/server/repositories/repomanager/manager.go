package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/library/internal/server/repositories/books"
	"github.com/dmitrijs2005/library/internal/server/repositories/credentials"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path serves both plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Books(db dbx.DBTX) books.Repository
}
