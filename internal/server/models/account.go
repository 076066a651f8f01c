package models

// Account is a row of the account table.
type Account struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Email     string
	Phone     *string
	Role      int
}

// Credential is a row of account_credential; one per account.
type Credential struct {
	AccountID  int64
	SaltedHash string
	Salt       string
}

// AccountWithCredential is the join used by sign-in.
type AccountWithCredential struct {
	Account
	SaltedHash string
	Salt       string
}
