package model

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleCompany UserRole = "company"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	Role         UserRole  `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Blocked      bool      `json:"blocked" bson:"blocked"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type UserCreate struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=user company admin"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the shape returned by every auth endpoint that issues
// an access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Role        string `json:"role,omitempty"`
}
