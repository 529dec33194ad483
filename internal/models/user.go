package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleLecturer UserRole = "LECTURER"
	RoleStudent  UserRole = "STUDENT"
)

// User represents an application user stored in the users table. Students
// carry a matric ID and home programme; lecturers carry an employee ID with
// their reviewer scope held in the lecturer_subjects / lecturer_programmes
// join tables. The legacy_programme column is the pre-migration single
// programme assignment some lecturer records still rely on.
type User struct {
	ID              string     `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        string     `db:"full_name" json:"full_name"`
	Role            UserRole   `db:"role" json:"role"`
	MatricID        *string    `db:"matric_id" json:"matric_id,omitempty"`
	EmployeeID      *string    `db:"employee_id" json:"employee_id,omitempty"`
	ProgrammeID     *string    `db:"programme_id" json:"programme_id,omitempty"`
	LegacyProgramme *string    `db:"legacy_programme" json:"legacy_programme,omitempty"`
	Active          bool       `db:"active" json:"active"`
	LastLogin       *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
