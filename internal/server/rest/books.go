package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type addBookRequest struct {
	ISBN13          flexString `json:"isbn13"`
	Authors         string     `json:"authors"`
	PublicationYear flexString `json:"publication_year"`
	OriginalTitle   string     `json:"original_title"`
	Title           flexString `json:"title"`
	RatingAvg       flexString `json:"rating_avg"`
	Rating1Star     flexString `json:"rating_1_star"`
	Rating2Star     flexString `json:"rating_2_star"`
	Rating3Star     flexString `json:"rating_3_star"`
	Rating4Star     flexString `json:"rating_4_star"`
	Rating5Star     flexString `json:"rating_5_star"`
	ImageURL        string     `json:"image_url"`
	ImageSmallURL   string     `json:"image_small_url"`
}

type updateRatingsRequest struct {
	Title       flexString  `json:"title"`
	Rating1Star *flexString `json:"rating_1_star"`
	Rating2Star *flexString `json:"rating_2_star"`
	Rating3Star *flexString `json:"rating_3_star"`
	Rating4Star *flexString `json:"rating_4_star"`
	Rating5Star *flexString `json:"rating_5_star"`
}

type entryResponse struct {
	Message string       `json:"message,omitempty"`
	Entry   *models.Book `json:"entry"`
}

type entriesResponse struct {
	Message string         `json:"message,omitempty"`
	Entries []*models.Book `json:"entries"`
}

type pagination struct {
	TotalRecords int  `json:"totalRecords"`
	Limit        int  `json:"limit"`
	Offset       int  `json:"offset"`
	NextPage     *int `json:"nextPage"`
}

type pageResponse struct {
	Entries    []*models.Book `json:"entries"`
	Pagination pagination     `json:"pagination"`
}

// pathParam returns the decoded value of a route parameter.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, common.MsgMissingRequiredInfo)
		return
	}

	book, err := h.books.Add(r.Context(), services.BookInput{
		ISBN13:          req.ISBN13.String(),
		Authors:         req.Authors,
		PublicationYear: req.PublicationYear.String(),
		OriginalTitle:   req.OriginalTitle,
		Title:           req.Title.String(),
		RatingAvg:       req.RatingAvg.String(),
		Stars: [5]string{
			req.Rating1Star.String(),
			req.Rating2Star.String(),
			req.Rating3Star.String(),
			req.Rating4Star.String(),
			req.Rating5Star.String(),
		},
		ImageURL:      req.ImageURL,
		ImageSmallURL: req.ImageSmallURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, entryResponse{Entry: book})
}

func (h *Handler) getBookByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetByISBN(r.Context(), pathParam(r, "isbn13"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entryResponse{Entry: book})
}

func (h *Handler) getBookByTitle(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetByTitle(r.Context(), pathParam(r, "title"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entryResponse{Entry: book})
}

func queryParam(q url.Values, name string) *string {
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}

func intParam(q url.Values, name string, def int) int {
	n, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return def
	}
	return n
}

// listBooks serves both the filtered lookups and the paginated listing.
func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := services.BookFilter{
		Authors:         queryParam(q, "authors"),
		PublicationYear: queryParam(q, "publication_year"),
		RatingAvg:       queryParam(q, "rating_avg"),
	}

	if !filter.Empty() {
		found, err := h.books.Search(r.Context(), filter)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, entriesResponse{Entries: found})
		return
	}

	page, err := h.books.List(r.Context(),
		intParam(q, "limit", services.DefaultPageLimit),
		intParam(q, "offset", 0))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, pageResponse{
		Entries: page.Entries,
		Pagination: pagination{
			TotalRecords: page.TotalRecords,
			Limit:        page.Limit,
			Offset:       page.Offset,
			NextPage:     page.NextPage,
		},
	})
}

func (h *Handler) updateRatings(w http.ResponseWriter, r *http.Request) {
	var req updateRatingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, common.MsgRatingCountsInvalid)
		return
	}

	book, err := h.books.UpdateRatings(r.Context(), services.RatingsUpdate{
		Title: req.Title.String(),
		Stars: [5]*string{
			req.Rating1Star.ptr(),
			req.Rating2Star.ptr(),
			req.Rating3Star.ptr(),
			req.Rating4Star.ptr(),
			req.Rating5Star.ptr(),
		},
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, entryResponse{Message: "Ratings updated successfully", Entry: book})
}

func (h *Handler) deleteByISBN(w http.ResponseWriter, r *http.Request) {
	isbn := pathParam(r, "isbn13")
	deleted, err := h.books.DeleteByISBN(r.Context(), isbn)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entriesResponse{
		Message: "Book with ISBN " + isbn + " deleted successfully",
		Entries: deleted,
	})
}

func (h *Handler) deleteByAuthor(w http.ResponseWriter, r *http.Request) {
	author := pathParam(r, "author")
	deleted, err := h.books.DeleteByAuthor(r.Context(), author)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entriesResponse{
		Message: fmt.Sprintf("Deleted %d book(s) by author: %s", len(deleted), author),
		Entries: deleted,
	})
}
