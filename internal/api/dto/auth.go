package dto

import (
	"time"

	"github.com/mailsense/mailsense/internal/api/validation"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	} else if len(r.Username) > 50 {
		errors["username"] = "Username must be at most 50 characters"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}

	return errors
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r RequestPasswordResetRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}

	return errors
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	}
	if r.NewPassword == "" {
		errors["new_password"] = "New password is required"
	} else if len(r.NewPassword) < 8 {
		errors["new_password"] = "Password must be at least 8 characters"
	}

	return errors
}

type AuthResponse struct {
	Token string  `json:"access_token"`
	Type  string  `json:"token_type"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
