package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee || r == RoleCustomer
}

// Actor is the authenticated caller as seen by the core.
type Actor struct {
	ID   int64
	Role Role
}

type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	Enabled      bool
	TokenVersion int
	CreatedAt    time.Time
}

type Address struct {
	ID         int64
	CustomerID int64
	FullName   string
	Phone      string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	CreatedAt  time.Time
}

type ShippingZone struct {
	ID    int64
	City  string
	Fee   decimal.Decimal
	Label string
}
