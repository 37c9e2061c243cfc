package domain

import (
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/utils"
)

const MinPasswordLength = 8

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns a copy without the password hash.
func (u *User) Public() *User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}

type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *UserInfo `json:"user"`
	Token string    `json:"token"`
}

func (r *SignupRequest) Normalize() {
	r.Name = utils.NormalizeString(r.Name)
	r.Email = utils.NormalizeEmail(r.Email)
}

func (r *SignupRequest) Validate() error {
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return Validation(CodeMissingFields, "Please provide all required fields: name, email, and password")
	}
	if !utils.IsValidEmail(r.Email) {
		return Validation(CodeInvalidEmail, "Please provide a valid email address")
	}
	if len(r.Password) < MinPasswordLength {
		return Validation(CodeWeakPassword, "Password must be at least 8 characters long")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = utils.NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return Validation(CodeMissingFields, "Please provide both email and password")
	}
	return nil
}
