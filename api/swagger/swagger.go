package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduShare API",
        "description": "Academic material sharing platform for Malaysian polytechnic programmes",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, registration and session management"},
        {"name": "Catalog", "description": "Programme and subject reference data"},
        {"name": "Materials", "description": "Material uploads, browsing and downloads"},
        {"name": "Approvals", "description": "Lecturer review queue and decisions"},
        {"name": "Comments", "description": "Material comments with attachments"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Reports", "description": "Engagement exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register/student": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Account created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/register/lecturer": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a lecturer account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterLecturerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Account created"},
                    "400": {"description": "Unknown teaching subject"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Expired or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Refresh token revoked"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Password changed, sessions revoked"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Current user info"}
                }
            }
        },
        "/programmes": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List programmes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Programme list"}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a programme (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Programme created"},
                    "409": {"description": "Code already exists"}
                }
            }
        },
        "/programmes/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get programme detail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Programme"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Catalog"],
                "summary": "Update a programme (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Programme updated"}
                }
            }
        },
        "/programmes/{id}/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List a programme's subjects",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "semester", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Subject list"}
                }
            }
        },
        "/subjects": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a subject (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Subject created"},
                    "409": {"description": "Code already exists in programme"}
                }
            }
        },
        "/subjects/{id}": {
            "put": {
                "tags": ["Catalog"],
                "summary": "Update a subject (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Subject updated"}
                }
            }
        },
        "/materials": {
            "get": {
                "tags": ["Materials"],
                "summary": "Browse approved materials",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "programme_id", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "subject_code", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Material list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Materials"],
                "summary": "Upload a material",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "title", "in": "formData", "type": "string", "required": true},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "type", "in": "formData", "type": "string", "required": true},
                    {"name": "programme_id", "in": "formData", "type": "string", "required": true},
                    {"name": "semester", "in": "formData", "type": "integer", "required": true},
                    {"name": "subject_code", "in": "formData", "type": "string", "required": true},
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Material created; students start PENDING"},
                    "400": {"description": "Invalid payload, size or type"}
                }
            }
        },
        "/materials/mine": {
            "get": {
                "tags": ["Materials"],
                "summary": "List own uploads in every status",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Own uploads"}
                }
            }
        },
        "/materials/{id}": {
            "get": {
                "tags": ["Materials"],
                "summary": "Get material detail",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Material"},
                    "404": {"description": "Not found or not visible"}
                }
            },
            "delete": {
                "tags": ["Materials"],
                "summary": "Delete a material (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Material removed"}
                }
            }
        },
        "/materials/{id}/download-url": {
            "get": {
                "tags": ["Materials"],
                "summary": "Generate a signed download URL",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Signed URL with expiry"}
                }
            }
        },
        "/materials/{id}/download": {
            "get": {
                "tags": ["Materials"],
                "summary": "Download the material file",
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/materials/{id}/approve": {
            "post": {
                "tags": ["Approvals"],
                "summary": "Approve a pending material",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Material approved"},
                    "403": {"description": "Outside review scope"},
                    "409": {"description": "Material already decided"}
                }
            }
        },
        "/materials/{id}/reject": {
            "post": {
                "tags": ["Approvals"],
                "summary": "Reject a pending material with a reason",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectMaterialRequest"}}
                ],
                "responses": {
                    "200": {"description": "Material rejected"},
                    "403": {"description": "Outside review scope"},
                    "409": {"description": "Material already decided"}
                }
            }
        },
        "/approvals/pending": {
            "get": {
                "tags": ["Approvals"],
                "summary": "List pending materials in the caller's review scope",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Pending queue with scope state in meta"}
                }
            }
        },
        "/materials/{id}/comments": {
            "get": {
                "tags": ["Comments"],
                "summary": "List a material's comments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Comments oldest first"}
                }
            },
            "post": {
                "tags": ["Comments"],
                "summary": "Comment on a material",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "content", "in": "formData", "type": "string", "required": true},
                    {"name": "attachments", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Comment created; rejected files listed per reason"},
                    "403": {"description": "Comments disabled for exam papers"}
                }
            }
        },
        "/materials/{id}/comments/{commentId}": {
            "delete": {
                "tags": ["Comments"],
                "summary": "Delete a comment (author or admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "commentId", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Comment removed"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "User list"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user detail (admin or self)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "User"}
                }
            }
        },
        "/users/{id}/active": {
            "put": {
                "tags": ["Users"],
                "summary": "Enable or disable an account (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Flag updated"}
                }
            }
        },
        "/users/{id}/promote": {
            "post": {
                "tags": ["Users"],
                "summary": "Promote a user to admin",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "User promoted"},
                    "409": {"description": "Already an admin"}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Users"],
                "summary": "Read effective upload and comment policy (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Settings snapshot"}
                }
            }
        },
        "/reports/engagement": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export engagement statistics (admin)",
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterStudentRequest": {
            "type": "object",
            "required": ["email", "password", "full_name", "matric_id", "programme_id"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "matric_id": {"type": "string"},
                "programme_id": {"type": "string"}
            }
        },
        "RegisterLecturerRequest": {
            "type": "object",
            "required": ["email", "password", "full_name", "employee_id"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "employee_id": {"type": "string"},
                "teaching_subjects": {"type": "array", "items": {"type": "string"}},
                "programmes": {"type": "array", "items": {"type": "string"}}
            }
        },
        "RejectMaterialRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
