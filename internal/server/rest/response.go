package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, messageResponse{Message: msg})
}

// writeError maps a service error to a status and client message. Anything
// unrecognised is logged and reported as a server error.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr  *common.ValidationError
		cErr  *common.ConflictError
		nfErr *common.NotFoundError
	)

	switch {
	case errors.As(err, &vErr):
		writeMessage(w, r, http.StatusBadRequest, vErr.Message)
	case errors.As(err, &cErr):
		writeMessage(w, r, http.StatusBadRequest, cErr.Message)
	case errors.As(err, &nfErr):
		writeMessage(w, r, http.StatusNotFound, nfErr.Message)
	case errors.Is(err, common.ErrorUnauthorized):
		writeMessage(w, r, http.StatusBadRequest, common.MsgInvalidCredentials)
	default:
		h.logger.Error(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeMessage(w, r, http.StatusInternalServerError, common.ServerErrorMessage)
	}
}
