package auth

import "time"

// MeResponse es la respuesta de GET /v1/me.
type MeResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Role           string     `json:"role"`
	EmailConfirmed bool       `json:"emailConfirmed"`
	HasCompany     bool       `json:"hasCompany"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// UpdateProfileRequest es el body de PUT /v1/me.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ChangePasswordRequest es el body de POST /v1/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
