// internal/models/branch.go
package models

import "time"

type Branch struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	Address   string    `json:"address" db:"address"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Bank struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	ContactPerson string    `json:"contactPerson" db:"contact_person"`
	ContactNumber string    `json:"contactNumber" db:"contact_number"`
	Email         string    `json:"email" db:"email"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
