package models

// RoleUser is the role given to self-registered accounts.
const RoleUser = "user"

// User represents an account of the users table.
type User struct {
	ID       uint    `json:"id" gorm:"column:user_id;primaryKey;autoIncrement"`
	Username string  `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Password string  `json:"-" gorm:"column:password;size:255;not null"` // bcrypt hash
	Email    *string `json:"email,omitempty" gorm:"size:255"`
	Role     string  `json:"role" gorm:"size:32;not null;default:user"`
}

// TableName pins the table name used by the original schema.
func (User) TableName() string {
	return "users"
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserSummary is the public part of a user returned after login.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
