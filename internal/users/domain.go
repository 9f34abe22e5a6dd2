package users

import "time"

// User represents a user account for management.
type User struct {
	ID          int64
	CompanyID   int64
	GroupID     int64
	Username    string
	FirstName   string
	LastName    string
	Patronymic  string
	Locked      bool
	Comment     string
	CreatedDate time.Time
}

// ListFilters narrows and pages user listings.
type ListFilters struct {
	CompanyID int64
	Page      int
	PerPage   int
}
