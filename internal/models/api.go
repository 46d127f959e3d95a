package models

import "time"

// TokenResponse is the /token success payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserOut is the public view of a user account.
type UserOut struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// PublicUser converts an internal user to its API representation.
func PublicUser(u *InternalUser) UserOut {
	return UserOut{
		ID:         u.UserID,
		Username:   u.Username,
		Email:      u.Email,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// CompanyOut is the public view of a company record.
type CompanyOut struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Ticker  string  `json:"ticker"`
	Segment Segment `json:"segment"`
}

// PublicCompany converts a stored company to its API representation.
func PublicCompany(c *Company) CompanyOut {
	return CompanyOut{
		ID:      c.ID,
		Name:    c.Name,
		Ticker:  c.Ticker,
		Segment: c.Segment,
	}
}

// MessageResponse is a generic informational payload.
type MessageResponse struct {
	Message string `json:"message"`
}
