package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/server/services"
)

type registerRequest struct {
	FirstName string     `json:"firstname"`
	LastName  string     `json:"lastname"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      flexString `json:"role"`
	Phone     flexString `json:"phone"`
}

type registerResponse struct {
	AccessToken string `json:"accessToken"`
	ID          int64  `json:"id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  int    `json:"role"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

type hashDemoResponse struct {
	Salt         string `json:"salt"`
	SaltedHash   string `json:"salted_hash"`
	UnsaltedHash string `json:"unsalted_hash"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, common.MsgMissingRequiredInfo)
		return
	}

	res, err := h.accounts.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role.String(),
		Phone:     req.Phone.String(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, registerResponse{AccessToken: res.AccessToken, ID: res.ID})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, r, http.StatusBadRequest, common.MsgMissingRequiredInfo)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		User: userResponse{
			ID:    res.Account.ID,
			Email: res.Account.Email,
			Name:  res.Name,
			Role:  res.Account.Role,
		},
	})
}

func (h *Handler) hashDemo(w http.ResponseWriter, r *http.Request) {
	res, err := h.accounts.HashDemo(r.URL.Query().Get("password"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, hashDemoResponse{
		Salt:         res.Salt,
		SaltedHash:   res.SaltedHash,
		UnsaltedHash: res.UnsaltedHash,
	})
}
