package domain

import "time"

// User represents an account able to donate or administer NGOs.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// LoginResult is returned by the login endpoint.
type LoginResult struct {
	Token      string `json:"token"`
	Username   string `json:"username"`
	IsNGOAdmin bool   `json:"is_ngo_admin"`
	NGOID      *int64 `json:"ngo_id"`
}
