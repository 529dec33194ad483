package models

import "time"

// Subject represents one academic subject within a programme semester.
// (programme_id, code) is unique.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	ProgrammeID string    `db:"programme_id" json:"programme_id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Semester    int       `db:"semester" json:"semester"`
	CreditHours int       `db:"credit_hours" json:"credit_hours"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
