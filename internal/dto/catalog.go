package dto

// CreateProgrammeRequest captures fields for creating programmes.
type CreateProgrammeRequest struct {
	Code       string `json:"code" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=200"`
	Department string `json:"department" validate:"required,max=200"`
}

// UpdateProgrammeRequest modifies programme fields including the soft-disable
// flag.
type UpdateProgrammeRequest struct {
	Code       string `json:"code" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=200"`
	Department string `json:"department" validate:"required,max=200"`
	IsActive   *bool  `json:"is_active"`
}

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	ProgrammeID string `json:"programme_id" validate:"required"`
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=200"`
	Semester    int    `json:"semester" validate:"required,min=1,max=5"`
	CreditHours int    `json:"credit_hours" validate:"min=0,max=10"`
}
