package entity

import (
	"net/http"
	"teamvest/lib/validate"
	"time"

	"github.com/biter777/countries"
)

// Role controls which admin endpoints a token may call.
// Staff can read dashboards and process ranks; approvals require admin.
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// NotReferred is stored in Refree when a user signed up without an upline.
const NotReferred = "Not Referred"

// User is a platform member. Accounts are created at signup by the public
// application; the admin backend mutates flags and profile fields but never
// hard-deletes a record.
type User struct {
	Email             string    `json:"email" bson:"email" validate:"required,email"`
	Name              string    `json:"name" bson:"name"`
	Refree            string    `json:"refree" bson:"refree"`
	ReferralCode      string    `json:"referral_code" bson:"referral_code"`
	Country           string    `json:"country" bson:"country"`
	IsActive          bool      `json:"is_active" bson:"is_active"`
	InvestmentAllowed bool      `json:"investment_allowed" bson:"investment_allowed"`
	KycVerified       bool      `json:"kyc_verified" bson:"kyc_verified"`
	FailedLogins      int       `json:"failed_logins" bson:"failed_logins"`
	LockedUntil       time.Time `json:"locked_until,omitempty" bson:"locked_until,omitempty"`
	TwoFASecret       string    `json:"-" bson:"twofa_secret"`
	Role              Role      `json:"role" bson:"role"`
	RegisteredAt      time.Time `json:"registered_at" bson:"registered_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasUpline() bool {
	return u.Refree != "" && u.Refree != NotReferred
}

// NormalizeCountry resolves free-form country input to the ISO alpha-2 code.
// Unknown input is kept as entered; the store boundary logs it.
func (u *User) NormalizeCountry() bool {
	if u.Country == "" {
		return true
	}
	c := countries.ByName(u.Country)
	if c == countries.Unknown {
		return false
	}
	u.Country = c.Alpha2()
	return true
}

// UserEdit is the admin profile-edit request body.
type UserEdit struct {
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentAllowed *bool  `json:"investment_allowed,omitempty"`
}

func (e *UserEdit) Bind(_ *http.Request) error {
	return validate.Struct(e)
}
