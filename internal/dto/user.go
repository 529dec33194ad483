package dto

// RegisterStudentRequest registers a student account keyed by matric ID.
type RegisterStudentRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required,max=200"`
	MatricID    string `json:"matric_id" validate:"required,max=30"`
	ProgrammeID string `json:"programme_id" validate:"required"`
}

// RegisterLecturerRequest registers a lecturer account keyed by employee ID
// with an explicit teaching assignment.
type RegisterLecturerRequest struct {
	Email            string   `json:"email" validate:"required,email"`
	Password         string   `json:"password" validate:"required,min=6"`
	FullName         string   `json:"full_name" validate:"required,max=200"`
	EmployeeID       string   `json:"employee_id" validate:"required,max=30"`
	TeachingSubjects []string `json:"teaching_subjects" validate:"max=50"`
	Programmes       []string `json:"programmes" validate:"max=20"`
}

// SetActiveRequest toggles an account's active flag.
type SetActiveRequest struct {
	Active bool `json:"active"`
}
