package models

import "time"

// Audit actions recorded by this service.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionRegister        = "REGISTER"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionMaterialUpload  = "MATERIAL_UPLOAD"
	AuditActionMaterialApprove = "MATERIAL_APPROVE"
	AuditActionMaterialReject  = "MATERIAL_REJECT"
	AuditActionMaterialDelete  = "MATERIAL_DELETE"
	AuditActionCommentCreate   = "COMMENT_CREATE"
	AuditActionCommentDelete   = "COMMENT_DELETE"
	AuditActionUserPromote     = "USER_PROMOTE"
	AuditActionCatalogMutation = "CATALOG_MUTATION"
	AuditActionReportExport    = "REPORT_EXPORT"
)

// AuditLog is one audit trail row.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
