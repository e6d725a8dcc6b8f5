package model

import (
	"time"

	"github.com/google/uuid"
)

// Tokens are the credentials issued by the backend after OTP verification.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether an access token is present.
func (t Tokens) Valid() bool {
	return t.AccessToken != ""
}

// Profile holds the minimal profile fields kept with a session.
type Profile struct {
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Session is the persisted record of a storefront visitor.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Tokens    Tokens    `json:"-"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
