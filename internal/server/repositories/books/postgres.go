package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/models"
)

const bookColumns = `id, isbn13, authors, publication_year, original_title, title,
		rating_avg, rating_count, rating_1_star, rating_2_star, rating_3_star, rating_4_star, rating_5_star,
		image_url, image_small_url`

var uniqueConstraints = map[string]error{
	"books_isbn13_key": common.ErrISBNExists,
	"books_title_key":  common.ErrTitleExists,
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*models.Book, error) {
	b := &models.Book{}
	err := s.Scan(&b.ID, &b.ISBN13, &b.Authors, &b.PublicationYear, &b.OriginalTitle, &b.Title,
		&b.RatingAvg, &b.RatingCount, &b.Rating1Star, &b.Rating2Star, &b.Rating3Star, &b.Rating4Star, &b.Rating5Star,
		&b.ImageURL, &b.ImageSmallURL)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Book, error) {
	b, err := scanBook(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) queryMany(ctx context.Context, query string, args ...any) ([]*models.Book, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	query := `
		INSERT INTO books (isbn13, authors, publication_year, original_title, title,
			rating_avg, rating_count, rating_1_star, rating_2_star, rating_3_star, rating_4_star, rating_5_star,
			image_url, image_small_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		book.ISBN13, book.Authors, book.PublicationYear, book.OriginalTitle, book.Title,
		book.RatingAvg, book.RatingCount, book.Rating1Star, book.Rating2Star, book.Rating3Star, book.Rating4Star, book.Rating5Star,
		book.ImageURL, book.ImageSmallURL).Scan(&book.ID)
	if err != nil {
		if known := dbx.TranslateUniqueViolation(err, uniqueConstraints); known != nil {
			return nil, known
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return book, nil
}

func (r *PostgresRepository) GetByISBN(ctx context.Context, isbn13 int64) (*models.Book, error) {
	return r.queryOne(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn13 = $1`, isbn13)
}

func (r *PostgresRepository) GetByTitle(ctx context.Context, title string) (*models.Book, error) {
	return r.queryOne(ctx, `SELECT `+bookColumns+` FROM books WHERE LOWER(title) = LOWER($1)`, title)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	return r.queryMany(ctx, `SELECT `+bookColumns+` FROM books
		WHERE LOWER(authors) LIKE '%' || LOWER($1) || '%' ESCAPE '\'
		ORDER BY id`, escapeLike(author))
}

func (r *PostgresRepository) ListByYear(ctx context.Context, year int) ([]*models.Book, error) {
	return r.queryMany(ctx, `SELECT `+bookColumns+` FROM books WHERE publication_year = $1 ORDER BY id`, year)
}

func (r *PostgresRepository) ListByMinRating(ctx context.Context, minRating float64) ([]*models.Book, error) {
	return r.queryMany(ctx, `SELECT `+bookColumns+` FROM books WHERE rating_avg >= $1 ORDER BY rating_avg DESC, id`, minRating)
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Book, error) {
	return r.queryMany(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateRatings(ctx context.Context, book *models.Book) error {
	query := `
		UPDATE books
		SET rating_1_star = $2, rating_2_star = $3, rating_3_star = $4, rating_4_star = $5, rating_5_star = $6,
			rating_count = $7, rating_avg = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, book.ID,
		book.Rating1Star, book.Rating2Star, book.Rating3Star, book.Rating4Star, book.Rating5Star,
		book.RatingCount, book.RatingAvg)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByISBN(ctx context.Context, isbn13 int64) ([]*models.Book, error) {
	return r.queryMany(ctx, `DELETE FROM books WHERE isbn13 = $1 RETURNING `+bookColumns, isbn13)
}

func (r *PostgresRepository) DeleteByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	return r.queryMany(ctx, `DELETE FROM books
		WHERE LOWER(authors) LIKE '%' || LOWER($1) || '%' ESCAPE '\'
		RETURNING `+bookColumns, escapeLike(author))
}
