package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/logging"
	"github.com/dmitrijs2005/library/internal/server/auth"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/ratelimit"
	"github.com/dmitrijs2005/library/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type fakeAccounts struct {
	gotRegister services.RegisterInput
	gotEmail    string
	registerErr error
	loginErr    error
}

func (f *fakeAccounts) Register(ctx context.Context, in services.RegisterInput) (*services.RegisterResult, error) {
	f.gotRegister = in
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.RegisterResult{AccessToken: "tok", ID: 7}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	f.gotEmail = email
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.LoginResult{
		AccessToken: "tok",
		Account:     &models.Account{ID: 7, Email: email, Role: 2},
		Name:        "A B",
	}, nil
}

func (f *fakeAccounts) HashDemo(password string) (*services.HashDemoResult, error) {
	return &services.HashDemoResult{Salt: "s", SaltedHash: "h:" + password, UnsaltedHash: "u"}, nil
}

type fakeBooks struct {
	gotInput  services.BookInput
	gotFilter services.BookFilter
	gotUpdate services.RatingsUpdate
	gotLimit  int
	gotOffset int
	gotParam  string
	err       error
	book      *models.Book
	list      []*models.Book
	page      *services.Page
}

func (f *fakeBooks) Add(ctx context.Context, in services.BookInput) (*models.Book, error) {
	f.gotInput = in
	return f.book, f.err
}

func (f *fakeBooks) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	f.gotParam = isbn
	return f.book, f.err
}

func (f *fakeBooks) GetByTitle(ctx context.Context, title string) (*models.Book, error) {
	f.gotParam = title
	return f.book, f.err
}

func (f *fakeBooks) Search(ctx context.Context, filter services.BookFilter) ([]*models.Book, error) {
	f.gotFilter = filter
	return f.list, f.err
}

func (f *fakeBooks) List(ctx context.Context, limit, offset int) (*services.Page, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return f.page, f.err
}

func (f *fakeBooks) UpdateRatings(ctx context.Context, u services.RatingsUpdate) (*models.Book, error) {
	f.gotUpdate = u
	return f.book, f.err
}

func (f *fakeBooks) DeleteByISBN(ctx context.Context, isbn string) ([]*models.Book, error) {
	f.gotParam = isbn
	return f.list, f.err
}

func (f *fakeBooks) DeleteByAuthor(ctx context.Context, author string) ([]*models.Book, error) {
	f.gotParam = author
	return f.list, f.err
}

type fakeLimiter struct {
	res ratelimit.Result
	err error
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	return f.res, f.err
}

func newTestRouter(a AccountService, b BookService, opts Options) http.Handler {
	if opts.SecretKey == nil {
		opts.SecretKey = secret
	}
	return NewHandler(a, b, logging.Nop{}, opts).Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string, hdr map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := rec.Result()
	var out map[string]any
	if strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	}
	return res, out
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{})
	res, body := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, res.Header.Get("X-Request-Id"))
}

func TestRequestID_IsEchoed(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{})
	res, _ := do(t, h, http.MethodGet, "/health", "", map[string]string{"X-Request-Id": "abc-123"})
	assert.Equal(t, "abc-123", res.Header.Get("X-Request-Id"))
}

func TestRegister_AcceptsNumericRole(t *testing.T) {
	fa := &fakeAccounts{}
	h := newTestRouter(fa, &fakeBooks{}, Options{})

	res, body := do(t, h, http.MethodPost, "/register",
		`{"firstname":"A","lastname":"B","username":"ab1","email":"a@b.com","password":"Abcdefg1","role":3,"phone":1234567890}`, nil)

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "tok", body["accessToken"])
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "3", fa.gotRegister.Role)
	assert.Equal(t, "1234567890", fa.gotRegister.Phone)
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", common.NewValidationError(common.MsgInvalidPassword), http.StatusBadRequest, common.MsgInvalidPassword},
		{"conflict", &common.ConflictError{Message: common.MsgUsernameExists, Err: common.ErrUsernameExists}, http.StatusBadRequest, common.MsgUsernameExists},
		{"internal", errors.New("db error: connection reset"), http.StatusInternalServerError, common.ServerErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&fakeAccounts{registerErr: tt.err}, &fakeBooks{}, Options{})
			res, body := do(t, h, http.MethodPost, "/register", `{"email":"a@b.com"}`, nil)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{})
	res, body := do(t, h, http.MethodPost, "/register", `{"role":true}`, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, common.MsgMissingRequiredInfo, body["message"])
}

func TestLogin(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{})
	res, body := do(t, h, http.MethodPost, "/login", `{"email":"a@b.com","password":"Abcdefg1"}`, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, float64(7), user["id"])
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "A B", user["name"])
	assert.Equal(t, float64(2), user["role"])

	h = newTestRouter(&fakeAccounts{loginErr: common.ErrorUnauthorized}, &fakeBooks{}, Options{})
	res, body = do(t, h, http.MethodPost, "/login", `{"email":"a@b.com","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, common.MsgInvalidCredentials, body["message"])
}

func TestHashDemo_Toggle(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{EnableHashDemo: true})
	res, body := do(t, h, http.MethodGet, "/hash_demo?password=abc", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "h:abc", body["salted_hash"])

	h = newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{EnableHashDemo: false})
	res, _ = do(t, h, http.MethodGet, "/hash_demo", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestAddBook_RequiresToken(t *testing.T) {
	fb := &fakeBooks{book: &models.Book{ID: 1, Title: "Dune"}}
	h := newTestRouter(&fakeAccounts{}, fb, Options{LibraryAddRequiresAuth: true})
	body := `{"isbn13":9780441013593,"authors":"Frank Herbert","publication_year":1965,"title":"Dune","rating_avg":4.25,"rating_5_star":3}`

	res, out := do(t, h, http.MethodPost, "/library/add", body, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Auth token is not supplied", out["message"])

	res, out = do(t, h, http.MethodPost, "/library/add", body, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "Token is not valid", out["message"])

	expired, err := auth.GenerateToken(1, 1, "", secret, -time.Minute)
	require.NoError(t, err)
	res, _ = do(t, h, http.MethodPost, "/library/add", body, map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	tok, err := auth.GenerateToken(1, 1, "", secret, time.Hour)
	require.NoError(t, err)
	res, out = do(t, h, http.MethodPost, "/library/add", body, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "Dune", out["entry"].(map[string]any)["title"])

	assert.Equal(t, "9780441013593", fb.gotInput.ISBN13)
	assert.Equal(t, "1965", fb.gotInput.PublicationYear)
	assert.Equal(t, "4.25", fb.gotInput.RatingAvg)
	assert.Equal(t, [5]string{"", "", "", "", "3"}, fb.gotInput.Stars)
}

func TestAddBook_OpenVariant(t *testing.T) {
	fb := &fakeBooks{book: &models.Book{ID: 1}}
	h := newTestRouter(&fakeAccounts{}, fb, Options{LibraryAddRequiresAuth: false})
	res, _ := do(t, h, http.MethodPost, "/library/add", `{"title":"Dune"}`, nil)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func TestGetBook_PathParams(t *testing.T) {
	fb := &fakeBooks{book: &models.Book{ID: 1}}
	h := newTestRouter(&fakeAccounts{}, fb, Options{})

	res, _ := do(t, h, http.MethodGet, "/library/isbn13/9780441013593", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "9780441013593", fb.gotParam)

	res, _ = do(t, h, http.MethodGet, "/library/title/The%20Hobbit", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "The Hobbit", fb.gotParam)

	fb.err = common.NewNotFoundError("No book found with title: Dune")
	res, body := do(t, h, http.MethodGet, "/library/title/Dune", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "No book found with title: Dune", body["message"])
}

func TestListBooks_FilterOrPage(t *testing.T) {
	next := 10
	fb := &fakeBooks{
		list: []*models.Book{{ID: 1}},
		page: &services.Page{Entries: []*models.Book{{ID: 2}}, TotalRecords: 12, Limit: 10, Offset: 0, NextPage: &next},
	}
	h := newTestRouter(&fakeAccounts{}, fb, Options{})

	res, body := do(t, h, http.MethodGet, "/library?publication_year=1965&rating_avg=4", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body["entries"], 1)
	assert.Nil(t, fb.gotFilter.Authors)
	require.NotNil(t, fb.gotFilter.PublicationYear)
	assert.Equal(t, "1965", *fb.gotFilter.PublicationYear)

	res, body = do(t, h, http.MethodGet, "/library?limit=abc&offset=0", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, services.DefaultPageLimit, fb.gotLimit)
	p := body["pagination"].(map[string]any)
	assert.Equal(t, float64(12), p["totalRecords"])
	assert.Equal(t, float64(10), p["nextPage"])
}

func TestUpdateRatings_PassesPresence(t *testing.T) {
	fb := &fakeBooks{book: &models.Book{ID: 1, Title: "Dune"}}
	h := newTestRouter(&fakeAccounts{}, fb, Options{})

	res, body := do(t, h, http.MethodPut, "/library/update/ratings", `{"title":"Dune","rating_2_star":4,"rating_5_star":"1"}`, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Ratings updated successfully", body["message"])

	assert.Equal(t, "Dune", fb.gotUpdate.Title)
	assert.Nil(t, fb.gotUpdate.Stars[0])
	require.NotNil(t, fb.gotUpdate.Stars[1])
	assert.Equal(t, "4", *fb.gotUpdate.Stars[1])
	assert.Equal(t, "1", *fb.gotUpdate.Stars[4])
}

func TestDeleteByAuthor(t *testing.T) {
	fb := &fakeBooks{list: []*models.Book{{ID: 1}, {ID: 2}}}
	h := newTestRouter(&fakeAccounts{}, fb, Options{})

	res, body := do(t, h, http.MethodDelete, "/library/remove/author/Frank%20Herbert", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Frank Herbert", fb.gotParam)
	assert.Len(t, body["entries"], 2)
	assert.Contains(t, body["message"], "Frank Herbert")
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{
		Limiter: &fakeLimiter{res: ratelimit.Result{Allowed: false, Limit: 10, RetryAfter: 1500 * time.Millisecond}},
	})

	res, body := do(t, h, http.MethodPost, "/login", `{"email":"a@b.com","password":"x"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "Too many requests", body["message"])
	assert.Equal(t, "2", res.Header.Get("Retry-After"))

	// catalog routes are not limited
	res, _ = do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := newTestRouter(&fakeAccounts{}, &fakeBooks{}, Options{
		Limiter: &fakeLimiter{res: ratelimit.Result{Allowed: true}, err: errors.New("redis down")},
	})
	res, _ := do(t, h, http.MethodPost, "/login", `{"email":"a@b.com","password":"x"}`, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRecoverer(t *testing.T) {
	h := newTestRouter(panicAccounts{&fakeAccounts{}}, &fakeBooks{}, Options{})
	res, _ := do(t, h, http.MethodPost, "/login", `{"email":"a@b.com","password":"x"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

type panicAccounts struct{ *fakeAccounts }

func (panicAccounts) Login(context.Context, string, string) (*services.LoginResult, error) {
	panic("boom")
}
