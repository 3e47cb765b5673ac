package models

import "time"

// AdminUser is an operator of the admin console. Player-facing accounts are
// handled elsewhere; only admins authenticate against this service.
type AdminUser struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
