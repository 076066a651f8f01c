package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/cryptox"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/config"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/library/internal/server/repositories/books"
	"github.com/dmitrijs2005/library/internal/server/repositories/credentials"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		SaltLength:                  32,
		PasswordHashScheme:          "sha256",
	}
}

// memStore keeps accounts and credentials in memory and enforces the same
// uniqueness rules as the schema.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	accounts    map[int64]models.Account
	credentials map[int64]models.Credential

	createErr     error
	credentialErr error
	findErr       error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    map[int64]models.Account{},
		credentials: map[int64]models.Credential{},
	}
}

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	for _, existing := range s.accounts {
		if existing.Username == a.Username {
			return nil, common.ErrUsernameExists
		}
		if existing.Email == a.Email {
			return nil, common.ErrEmailExists
		}
	}
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = *a
	return a, nil
}

func (r memAccounts) FindByEmail(ctx context.Context, email string) ([]*models.AccountWithCredential, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []*models.AccountWithCredential
	for id, a := range s.accounts {
		if a.Email != email {
			continue
		}
		c, ok := s.credentials[id]
		if !ok {
			continue
		}
		out = append(out, &models.AccountWithCredential{Account: a, SaltedHash: c.SaltedHash, Salt: c.Salt})
	}
	return out, nil
}

type memCredentials struct{ s *memStore }

func (r memCredentials) Create(ctx context.Context, c *models.Credential) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credentialErr != nil {
		return s.credentialErr
	}
	s.credentials[c.AccountID] = *c
	return nil
}

// fakeBooks is a scriptable books.Repository.
type fakeBooks struct {
	byTitle  map[string]*models.Book
	list     []*models.Book
	count    int
	deleted  []*models.Book
	err      error
	updated   *models.Book
	updateErr error
	lastArgs  []any
}

func (f *fakeBooks) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	b.ID = 1
	return b, nil
}

func (f *fakeBooks) GetByISBN(ctx context.Context, isbn int64) (*models.Book, error) {
	f.lastArgs = []any{isbn}
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.byTitle {
		if b.ISBN13 == isbn {
			return b, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBooks) GetByTitle(ctx context.Context, title string) (*models.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.byTitle[strings.ToLower(title)]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBooks) ListByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	f.lastArgs = []any{"author", author}
	return f.list, f.err
}

func (f *fakeBooks) ListByYear(ctx context.Context, year int) ([]*models.Book, error) {
	f.lastArgs = []any{"year", year}
	return f.list, f.err
}

func (f *fakeBooks) ListByMinRating(ctx context.Context, r float64) ([]*models.Book, error) {
	f.lastArgs = []any{"rating", r}
	return f.list, f.err
}

func (f *fakeBooks) List(ctx context.Context, limit, offset int) ([]*models.Book, error) {
	f.lastArgs = []any{limit, offset}
	return f.list, f.err
}

func (f *fakeBooks) Count(ctx context.Context) (int, error) { return f.count, f.err }

func (f *fakeBooks) UpdateRatings(ctx context.Context, b *models.Book) error {
	f.updated = b
	return f.updateErr
}

func (f *fakeBooks) DeleteByISBN(ctx context.Context, isbn int64) ([]*models.Book, error) {
	f.lastArgs = []any{isbn}
	return f.deleted, f.err
}

func (f *fakeBooks) DeleteByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	f.lastArgs = []any{author}
	return f.deleted, f.err
}

type fakeRepoManager struct {
	store *memStore
	books *fakeBooks
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository       { return memAccounts{m.store} }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository { return memCredentials{m.store} }
func (m *fakeRepoManager) Books(db dbx.DBTX) books.Repository             { return m.books }

func validAccount(id int64) models.Account {
	return models.Account{ID: id, FirstName: "A", LastName: "B", Username: "ab" + string(rune('0'+id)), Email: "a@b.com", Role: 3}
}

func credFor(id int64) models.Credential {
	return models.Credential{AccountID: id, Salt: "salt", SaltedHash: cryptox.GenerateHash("Abcdefg1", "salt")}
}
