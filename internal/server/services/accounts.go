// Package services contains server-side business logic. This file implements
// AccountService, which handles registration, sign-in and the hash demo.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/library/internal/common"
	"github.com/dmitrijs2005/library/internal/cryptox"
	"github.com/dmitrijs2005/library/internal/dbx"
	"github.com/dmitrijs2005/library/internal/server/auth"
	"github.com/dmitrijs2005/library/internal/server/config"
	"github.com/dmitrijs2005/library/internal/server/models"
	"github.com/dmitrijs2005/library/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/library/internal/validation"
)

// RegisterInput is the raw registration request. Role may arrive as a JSON
// string or number and is carried here in its textual form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Role      string
	Phone     string
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	AccessToken string
	ID          int64
}

// LoginResult carries the issued token and the signed-in account.
type LoginResult struct {
	AccessToken string
	Account     *models.Account
	Name        string
}

// HashDemoResult shows a fresh salt with the salted and unsalted hashes of a
// password.
type HashDemoResult struct {
	Salt         string
	SaltedHash   string
	UnsaltedHash string
}

// AccountService provides the account operations:
// - Register: validate, store account and credential, mint a token
// - Login: verify credentials and mint a token
// - HashDemo: diagnostic view of the hashing primitives
type AccountService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      *cryptox.Hasher
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	saltLength                  int

	// compared against when the email is unknown, so both failure paths hash once
	dummySalt string
	dummyHash string
}

// NewAccountService constructs an AccountService using repositories and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*AccountService, error) {
	hasher, err := cryptox.NewHasher(cfg.PasswordHashScheme)
	if err != nil {
		return nil, err
	}
	dummySalt, err := cryptox.GenerateSalt(cfg.SaltLength)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	dummyPassword, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	return &AccountService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		saltLength:                  cfg.SaltLength,
		dummySalt:                   dummySalt,
		dummyHash:                   hasher.Hash(dummyPassword, dummySalt),
	}, nil
}

// registration is the state threaded through the registration stages.
type registration struct {
	in    RegisterInput
	phone *string
	role  int
}

type registrationStage func(r *registration) error

var registrationStages = []registrationStage{
	validateEmail,
	validateNames,
	validatePhone,
	validatePassword,
	validateRole,
}

func validateEmail(r *registration) error {
	if !validation.IsValidEmail(r.in.Email) {
		return common.NewValidationError(common.MsgInvalidEmail)
	}
	return nil
}

func validateNames(r *registration) error {
	if !validation.IsStringProvided(r.in.FirstName) ||
		!validation.IsStringProvided(r.in.LastName) ||
		!validation.IsStringProvided(r.in.Username) {
		return common.NewValidationError(common.MsgMissingRequiredInfo)
	}
	return nil
}

// phone is optional; when present it has to be valid
func validatePhone(r *registration) error {
	if !validation.IsStringProvided(r.in.Phone) {
		return nil
	}
	if !validation.IsValidPhone(r.in.Phone) {
		return common.NewValidationError(common.MsgInvalidPhone)
	}
	phone := r.in.Phone
	r.phone = &phone
	return nil
}

func validatePassword(r *registration) error {
	if !validation.IsValidPassword(r.in.Password) {
		return common.NewValidationError(common.MsgInvalidPassword)
	}
	return nil
}

func validateRole(r *registration) error {
	if !validation.IsValidRole(r.in.Role) {
		return common.NewValidationError(common.MsgInvalidRole)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.in.Role), 64)
	if err != nil {
		return common.NewValidationError(common.MsgInvalidRole)
	}
	r.role = int(f)
	return nil
}

// Register validates the request, stores the account and its credential in
// one transaction and returns a token carrying the new id and role.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	reg := &registration{in: in}
	for _, stage := range registrationStages {
		if err := stage(reg); err != nil {
			return nil, err
		}
	}

	salt, err := cryptox.GenerateSalt(s.saltLength)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	account := &models.Account{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Phone:     reg.phone,
		Role:      reg.role,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Accounts(tx).Create(ctx, account); err != nil {
			return err
		}
		return s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
			AccountID:  account.ID,
			SaltedHash: s.hasher.Hash(in.Password, salt),
			Salt:       salt,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameExists):
			return nil, &common.ConflictError{Message: common.MsgUsernameExists, Err: err}
		case errors.Is(err, common.ErrEmailExists):
			return nil, &common.ConflictError{Message: common.MsgEmailExists, Err: err}
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	token, err := auth.GenerateToken(account.ID, account.Role, "", s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &RegisterResult{AccessToken: token, ID: account.ID}, nil
}

// Login verifies email and password. An unknown email and a wrong password
// both yield common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !validation.IsStringProvided(email) || !validation.IsStringProvided(password) {
		return nil, common.NewValidationError(common.MsgMissingRequiredInfo)
	}

	rows, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error searching account: %w", err)
	}

	switch len(rows) {
	case 0:
		s.hasher.Verify(s.dummyHash, password, s.dummySalt)
		return nil, common.ErrorUnauthorized
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d accounts share one email", common.ErrorInternal, len(rows))
	}

	found := rows[0]
	if !s.hasher.Verify(found.SaltedHash, password, found.Salt) {
		return nil, common.ErrorUnauthorized
	}

	name := strings.TrimSpace(found.FirstName + " " + found.LastName)
	token, err := auth.GenerateToken(found.ID, found.Role, name, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	account := found.Account
	return &LoginResult{AccessToken: token, Account: &account, Name: name}, nil
}

// HashDemo hashes password with a fresh salt. An empty password means
// "password".
func (s *AccountService) HashDemo(password string) (*HashDemoResult, error) {
	if password == "" {
		password = "password"
	}
	salt, err := cryptox.GenerateSalt(s.saltLength)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &HashDemoResult{
		Salt:         salt,
		SaltedHash:   s.hasher.Hash(password, salt),
		UnsaltedHash: cryptox.GenerateUnsaltedHash(password),
	}, nil
}
