package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/library/internal/validation"
)

// Page size bounds for the unfiltered catalog listing.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// BookInput is a new catalog entry in its textual request form. Star counts
// that are empty count as zero.
type BookInput struct {
	ISBN13          string
	Authors         string
	PublicationYear string
	OriginalTitle   string
	Title           string
	RatingAvg       string
	Stars           [5]string
	ImageURL        string
	ImageSmallURL   string
}

// BookFilter selects books by one criterion. When several are set the first
// one in field order wins.
type BookFilter struct {
	Authors         *string
	PublicationYear *string
	RatingAvg       *string
}

// Empty reports whether no criterion is set.
func (f BookFilter) Empty() bool {
	return f.Authors == nil && f.PublicationYear == nil && f.RatingAvg == nil
}

// RatingsUpdate adds star counts to the book with Title. Nil entries are not
// supplied.
type RatingsUpdate struct {
	Title string
	Stars [5]*string
}

// Page is one slice of the catalog in id order. NextPage is the offset of the
// following page, nil on the last one.
type Page struct {
	Entries      []*models.Book
	TotalRecords int
	Limit        int
	Offset       int
	NextPage     *int
}

// BookService implements the catalog operations.
type BookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBookService(db *sql.DB, m repomanager.RepositoryManager) *BookService {
	return &BookService{db: db, repomanager: m}
}

// maxRatingCount is the largest value the INT rating columns can hold. It
// bounds every star count and their sum.
const maxRatingCount = math.MaxInt32

func starCount(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	if !validation.IsNonNegativeInteger(v) {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n > maxRatingCount {
		return 0, false
	}
	return int(n), true
}

// ratingsFit reports whether every count and their total fit the rating columns.
func ratingsFit(r models.Ratings) bool {
	total := 0
	for _, n := range r {
		if n < 0 || n > maxRatingCount {
			return false
		}
		total += n
	}
	return total <= maxRatingCount
}

// Add validates in and inserts it. RatingCount is the sum of the star counts.
func (s *BookService) Add(ctx context.Context, in BookInput) (*models.Book, error) {
	if !validation.IsValidISBN13(in.ISBN13) {
		return nil, common.NewValidationError(common.MsgInvalidISBN)
	}
	if !validation.IsStringProvided(in.Authors) {
		return nil, common.NewValidationError(common.MsgInvalidAuthors)
	}
	if !validation.IsValidYear(in.PublicationYear) {
		return nil, common.NewValidationError(common.MsgInvalidYear)
	}
	if !validation.IsValidTitle(in.Title) {
		return nil, common.NewValidationError(common.MsgInvalidTitle)
	}
	if !validation.IsValidRating(in.RatingAvg) {
		return nil, common.NewValidationError(common.MsgInvalidRatingAvg)
	}

	var stars models.Ratings
	for i, v := range in.Stars {
		n, ok := starCount(v)
		if !ok {
			return nil, common.NewValidationError(common.MsgRatingCountsInvalid)
		}
		stars[i] = n
	}
	if !ratingsFit(stars) {
		return nil, common.NewValidationError(common.MsgRatingCountsInvalid)
	}

	isbn, _ := strconv.ParseInt(in.ISBN13, 10, 64)
	year, _ := strconv.Atoi(in.PublicationYear)
	avg, _ := strconv.ParseFloat(in.RatingAvg, 64)

	book := &models.Book{
		ISBN13:          isbn,
		Authors:         in.Authors,
		PublicationYear: year,
		OriginalTitle:   in.OriginalTitle,
		Title:           in.Title,
		ImageURL:        in.ImageURL,
		ImageSmallURL:   in.ImageSmallURL,
	}
	book.SetRatings(stars)
	book.RatingAvg = avg

	created, err := s.repomanager.Books(s.db).Create(ctx, book)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrISBNExists):
			return nil, &common.ConflictError{Message: common.MsgISBNExists, Err: err}
		case errors.Is(err, common.ErrTitleExists):
			return nil, &common.ConflictError{Message: common.MsgTitleExists, Err: err}
		}
		return nil, fmt.Errorf("error creating book: %w", err)
	}
	return created, nil
}

func (s *BookService) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	if !validation.IsValidISBN13(isbn) {
		return nil, common.NewValidationError(common.MsgInvalidISBN)
	}
	n, _ := strconv.ParseInt(isbn, 10, 64)

	book, err := s.repomanager.Books(s.db).GetByISBN(ctx, n)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("No book found with ISBN: " + isbn)
		}
		return nil, fmt.Errorf("error searching book: %w", err)
	}
	return book, nil
}

// GetByTitle matches title case-insensitively.
func (s *BookService) GetByTitle(ctx context.Context, title string) (*models.Book, error) {
	if !validation.IsValidTitle(title) {
		return nil, common.NewValidationError(common.MsgInvalidTitle)
	}

	book, err := s.repomanager.Books(s.db).GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("No book found with title: " + title)
		}
		return nil, fmt.Errorf("error searching book: %w", err)
	}
	return book, nil
}

// Search applies the first criterion set in f. An empty result is a
// *common.NotFoundError naming the criterion.
func (s *BookService) Search(ctx context.Context, f BookFilter) ([]*models.Book, error) {
	repo := s.repomanager.Books(s.db)

	var (
		found    []*models.Book
		err      error
		notFound string
	)

	switch {
	case f.Authors != nil:
		author := *f.Authors
		if !validation.IsStringProvided(author) {
			return nil, common.NewValidationError(common.MsgInvalidAuthor)
		}
		found, err = repo.ListByAuthor(ctx, author)
		notFound = "No books found for author: " + author
	case f.PublicationYear != nil:
		year := *f.PublicationYear
		if !validation.IsValidYear(year) {
			return nil, common.NewValidationError(common.MsgInvalidYear)
		}
		y, _ := strconv.Atoi(year)
		found, err = repo.ListByYear(ctx, y)
		notFound = "No books found for publication year: " + year
	case f.RatingAvg != nil:
		rating := *f.RatingAvg
		if !validation.IsValidRating(rating) {
			return nil, common.NewValidationError(common.MsgInvalidRatingAvg)
		}
		r, _ := strconv.ParseFloat(rating, 64)
		found, err = repo.ListByMinRating(ctx, r)
		notFound = "No books found with rating average of at least: " + rating
	default:
		return nil, common.NewValidationError(common.MsgMissingRequiredInfo)
	}

	if err != nil {
		return nil, fmt.Errorf("error searching books: %w", err)
	}
	if len(found) == 0 {
		return nil, common.NewNotFoundError(notFound)
	}
	return found, nil
}

// List returns one page of the catalog. Out of range limit or offset fall
// back to the defaults.
func (s *BookService) List(ctx context.Context, limit, offset int) (*Page, error) {
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	repo := s.repomanager.Books(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting books: %w", err)
	}
	entries, err := repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing books: %w", err)
	}

	page := &Page{Entries: entries, TotalRecords: total, Limit: limit, Offset: offset}
	if next := offset + limit; next < total {
		page.NextPage = &next
	}
	return page, nil
}

// UpdateRatings adds the supplied star counts to the stored ones. An unknown
// title is reported before the counts are looked at.
func (s *BookService) UpdateRatings(ctx context.Context, u RatingsUpdate) (*models.Book, error) {
	if !validation.IsValidTitle(u.Title) {
		return nil, common.NewValidationError(common.MsgInvalidTitle)
	}

	var book *models.Book
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Books(tx)

		b, err := repo.GetByTitle(ctx, u.Title)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewNotFoundError(common.MsgBookTitleNotFound)
			}
			return err
		}

		provided := false
		ratings := b.Ratings()
		for i, v := range u.Stars {
			if v == nil {
				continue
			}
			provided = true
			n, ok := starCount(*v)
			if *v == "" || !ok || ratings[i] > maxRatingCount-n {
				return common.NewValidationError(common.MsgRatingCountsInvalid)
			}
			ratings[i] += n
		}
		if !provided {
			return common.NewValidationError(common.MsgRatingCountRequired)
		}
		if !ratingsFit(ratings) {
			return common.NewValidationError(common.MsgRatingCountsInvalid)
		}

		b.SetRatings(ratings)
		if err := repo.UpdateRatings(ctx, b); err != nil {
			return err
		}
		book = b
		return nil
	})
	if err != nil {
		var vErr *common.ValidationError
		var nfErr *common.NotFoundError
		if errors.As(err, &vErr) || errors.As(err, &nfErr) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating ratings: %w", err)
	}
	return book, nil
}

func (s *BookService) DeleteByISBN(ctx context.Context, isbn string) ([]*models.Book, error) {
	if !validation.IsValidISBN13(isbn) {
		return nil, common.NewValidationError(common.MsgInvalidISBN)
	}
	n, _ := strconv.ParseInt(isbn, 10, 64)

	deleted, err := s.repomanager.Books(s.db).DeleteByISBN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("error deleting book: %w", err)
	}
	if len(deleted) == 0 {
		return nil, common.NewNotFoundError("No book found with ISBN: " + isbn)
	}
	return deleted, nil
}

func (s *BookService) DeleteByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	if !validation.IsStringProvided(author) {
		return nil, common.NewValidationError(common.MsgInvalidAuthor)
	}

	deleted, err := s.repomanager.Books(s.db).DeleteByAuthor(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("error deleting books: %w", err)
	}
	if len(deleted) == 0 {
		return nil, common.NewNotFoundError("No books found for author: " + author)
	}
	return deleted, nil
}
