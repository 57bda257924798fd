package domain

import "context"

// Role is the closed set of account roles known to the storefront.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a raw role claim to a Role. An empty claim is a customer;
// "user" is accepted as the backend's legacy spelling of customer. Any other
// value reports ok=false.
func ParseRole(s string) (role Role, ok bool) {
	switch s {
	case "", "user", string(RoleCustomer):
		return RoleCustomer, true
	case string(RoleAdmin):
		return RoleAdmin, true
	default:
		return RoleCustomer, false
	}
}

// CanAccessAdmin reports whether the role opens admin-gated views.
func (r Role) CanAccessAdmin() bool {
	return r == RoleAdmin
}

// User is an account held by the local store. With the remote backend,
// accounts live in the backend and only their token claims reach this service.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	Role         Role   `gorm:"size:20;not null;default:customer" json:"role"`
}

// UserRepository defines the data access interface for locally stored users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// AuthToken is a signed session credential issued at login or registration.
type AuthToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt,omitempty"`
}

// AuthGateway exchanges credentials for a session credential. It is served by
// the remote backend or by the local user store.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*AuthToken, error)
	Register(ctx context.Context, name, email, password string) (*AuthToken, error)
}
