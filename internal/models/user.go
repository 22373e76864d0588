package models

import (
	"fmt"
	"time"
)

// User represents a registered user account.
// Deletion is permanent, so there is deliberately no soft-delete column.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	FirstName    string     `gorm:"size:30" json:"first_name"`
	LastName     string     `gorm:"size:150" json:"last_name"`
	Email        string     `gorm:"index;size:254;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Birthdate    *time.Time `gorm:"type:date" json:"birthdate"`
	NationalID   *int64     `json:"national_id"`
	PhoneNumber  string     `gorm:"size:20;not null" json:"phone_number"`
	Wallet       float64    `gorm:"type:decimal(12,2);default:0" json:"wallet"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// UserResponse is the external view of a user record. It has no password
// field at all, so the credential cannot leak through any read path. Wallet
// is rendered with two decimal places and birthdate in YYYY-MM-DD form.
type UserResponse struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Birthdate   *string   `json:"birthdate"`
	NationalID  *int64    `json:"national_id"`
	PhoneNumber string    `json:"phone_number"`
	Wallet      string    `json:"wallet"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUserResponse builds the external view for a user record
func NewUserResponse(user *User) *UserResponse {
	resp := &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		NationalID:  user.NationalID,
		PhoneNumber: user.PhoneNumber,
		Wallet:      fmt.Sprintf("%.2f", user.Wallet),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if user.Birthdate != nil {
		birthdate := user.Birthdate.Format("2006-01-02")
		resp.Birthdate = &birthdate
	}
	return resp
}
