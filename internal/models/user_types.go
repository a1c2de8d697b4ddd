package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles. Admin is assigned at provisioning time and never derived
// from an email match.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the model for the 'users' table. Every user can both buy and
// sell; CommissionRate is the fraction of the seller price the platform
// keeps on their future listings.
type User struct {
	ID             int64   `json:"id" db:"id"`
	Email          string  `json:"email" db:"email"`
	PasswordHash   string  `json:"-" db:"password_hash"`
	FullName       string  `json:"fullName" db:"full_name"`
	Role           string  `json:"role" db:"role"`
	Banned         bool    `json:"banned" db:"banned"`
	CommissionRate float64 `json:"commissionRate" db:"commission_rate"`

	// --- Profile Fields (Pointers = Clean JSON) ---
	Address  *string `json:"address,omitempty" db:"address"`
	FCMToken *string `json:"-" db:"fcm_token"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
