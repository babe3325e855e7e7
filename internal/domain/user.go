package domain

import "time"

// User is an account keyed by its normalized email. Accounts start unverified
// and flip to verified after a successful OTP verification.
type User struct {
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Verified     bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}
