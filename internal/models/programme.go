package models

import "time"

// Programme represents one academic programme. Reference data: rarely
// mutated, soft-disabled via IsActive, never deleted.
type Programme struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	Department string    `db:"department" json:"department"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// MinSemester and MaxSemester bound the semester range programmes declare.
const (
	MinSemester = 1
	MaxSemester = 5
)
