package auth

import "time"

// User represents a back-office user account.
type User struct {
	ID           int64
	CompanyID    int64
	GroupID      int64
	Username     string
	FirstName    string
	LastName     string
	Patronymic   string
	Locked       bool
	PasswordHash string
	CreatedDate  time.Time
}

// TokenRecord is the audit trail row written for every issued access
// token. It exists for incident response; tokens are not revocable
// through it.
type TokenRecord struct {
	TokenID   string
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	IP        string
	UserAgent string
}
