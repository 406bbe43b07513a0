package domain

import "time"

// Roles a registered account can hold.
const (
	RoleInvestor     = "investor"
	RoleEntrepreneur = "entrepreneur"
)

// ValidRole reports whether role is one of the two supported account roles.
func ValidRole(role string) bool {
	return role == RoleInvestor || role == RoleEntrepreneur
}

// User is a registered account. Identity fields (name, email, role) are fixed
// at registration; bio, location and avatar are mutable via profile updates.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"firstName" gorm:"size:255;not null"`
	LastName     string    `json:"lastName" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         string    `json:"role" gorm:"size:50;not null"`
	Bio          string    `json:"bio,omitempty"`
	Location     string    `json:"location,omitempty" gorm:"size:255"`
	Avatar       string    `json:"avatar,omitempty" gorm:"size:512"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser carries the fields accepted at registration. The password arrives
// in clear text and is hashed before it ever reaches a Store.
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Bio          string
	Location     string
	Avatar       string
}

// UserWithProfile pairs an account with its (possibly absent) profile for
// directory listings and the /me endpoint.
type UserWithProfile struct {
	User
	Profile *Profile `json:"profile,omitempty"`
}
