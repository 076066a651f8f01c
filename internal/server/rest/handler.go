package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/library/internal/logging"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	HashDemo(password string) (*services.HashDemoResult, error)
}

type BookService interface {
	Add(ctx context.Context, in services.BookInput) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	GetByTitle(ctx context.Context, title string) (*models.Book, error)
	Search(ctx context.Context, f services.BookFilter) ([]*models.Book, error)
	List(ctx context.Context, limit, offset int) (*services.Page, error)
	UpdateRatings(ctx context.Context, u services.RatingsUpdate) (*models.Book, error)
	DeleteByISBN(ctx context.Context, isbn string) ([]*models.Book, error)
	DeleteByAuthor(ctx context.Context, author string) ([]*models.Book, error)
}

// Options tune which routes are exposed and how they are guarded.
type Options struct {
	SecretKey              []byte
	LibraryAddRequiresAuth bool
	EnableHashDemo         bool
	// Limiter guards /register and /login; nil disables rate limiting.
	Limiter RateLimiter
}

type Handler struct {
	accounts AccountService
	books    BookService
	logger   logging.Logger
	opts     Options
}

func NewHandler(a AccountService, b BookService, l logging.Logger, opts Options) *Handler {
	return &Handler{
		accounts: a,
		books:    b,
		logger:   l.With("module", "rest"),
		opts:     opts,
	}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Group(func(g chi.Router) {
		if h.opts.Limiter != nil {
			g.Use(h.rateLimit)
		}
		g.Post("/register", h.register)
		g.Post("/login", h.login)
	})

	if h.opts.EnableHashDemo {
		r.Get("/hash_demo", h.hashDemo)
	}

	r.Route("/library", func(lr chi.Router) {
		lr.Get("/", h.listBooks)
		lr.Get("/isbn13/{isbn13}", h.getBookByISBN)
		lr.Get("/title/{title}", h.getBookByTitle)
		lr.Put("/update/ratings", h.updateRatings)
		lr.Delete("/remove/ISBN/{isbn13}", h.deleteByISBN)
		lr.Delete("/remove/author/{author}", h.deleteByAuthor)

		lr.Group(func(g chi.Router) {
			if h.opts.LibraryAddRequiresAuth {
				g.Use(h.bearerAuth)
			}
			g.Post("/add", h.addBook)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
