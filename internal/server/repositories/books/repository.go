// Package books declares and implements storage for the book catalog.
package books

import (
	"context"

	"github.com/dmitrijs2005/library/internal/server/models"
)

// Repository defines the catalog queries. Single-row lookups return
// common.ErrorNotFound when nothing matches; list queries return an empty
// slice instead.
type Repository interface {
	// Create inserts book and fills in its ID. ISBN and title collisions
	// yield common.ErrISBNExists / common.ErrTitleExists.
	Create(ctx context.Context, book *models.Book) (*models.Book, error)

	GetByISBN(ctx context.Context, isbn13 int64) (*models.Book, error)

	// GetByTitle matches the full title case-insensitively.
	GetByTitle(ctx context.Context, title string) (*models.Book, error)

	// ListByAuthor matches author as a case-insensitive substring of authors.
	ListByAuthor(ctx context.Context, author string) ([]*models.Book, error)
	ListByYear(ctx context.Context, year int) ([]*models.Book, error)
	ListByMinRating(ctx context.Context, minRating float64) ([]*models.Book, error)

	// List pages through the catalog ordered by id.
	List(ctx context.Context, limit, offset int) ([]*models.Book, error)
	Count(ctx context.Context) (int, error)

	// UpdateRatings persists the star counts, rating_count and rating_avg of book.
	UpdateRatings(ctx context.Context, book *models.Book) error

	// DeleteByISBN and DeleteByAuthor return the deleted rows.
	DeleteByISBN(ctx context.Context, isbn13 int64) ([]*models.Book, error)
	DeleteByAuthor(ctx context.Context, author string) ([]*models.Book, error)
}
