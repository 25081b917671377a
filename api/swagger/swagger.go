package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Enroll Wizard API",
        "description": "Multi-step enrollment wizard with persisted drafts and asynchronous submission",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Enrollment Drafts", "description": "Wizard sessions, step navigation and submission"},
        {"name": "Catalog", "description": "Subjects per class and PIN code lookup"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Ops"],
                "summary": "Wizard funnel counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/enrollments/drafts": {
            "post": {
                "tags": ["Enrollment Drafts"],
                "summary": "Open a new draft or resume an existing one",
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CreateDraftRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed draft id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/drafts/{id}": {
            "get": {
                "tags": ["Enrollment Drafts"],
                "summary": "Get wizard state",
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Draft not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Enrollment Drafts"],
                "summary": "Merge field values into the draft",
                "parameters": [
                    {"$ref": "#/parameters/DraftID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRecord"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Draft already submitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Enrollment Drafts"],
                "summary": "Clear the draft",
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {
                    "204": {"description": "Cleared"},
                    "409": {"description": "Submission in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/drafts/{id}/steps/{step}": {
            "get": {
                "tags": ["Enrollment Drafts"],
                "summary": "Enter a step, redirecting to the first incomplete step when locked",
                "parameters": [{"$ref": "#/parameters/DraftID"}, {"$ref": "#/parameters/Step"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Enrollment Drafts"],
                "summary": "Validate step values and advance",
                "parameters": [
                    {"$ref": "#/parameters/DraftID"},
                    {"$ref": "#/parameters/Step"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRecord"}}
                ],
                "responses": {
                    "200": {"description": "Advanced", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Step locked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Step invalid", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/drafts/{id}/steps/{step}/validate": {
            "post": {
                "tags": ["Enrollment Drafts"],
                "summary": "Validate step values without storing them",
                "parameters": [
                    {"$ref": "#/parameters/DraftID"},
                    {"$ref": "#/parameters/Step"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRecord"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/enrollments/drafts/{id}/back": {
            "post": {
                "tags": ["Enrollment Drafts"],
                "summary": "Return to the previous step",
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/enrollments/drafts/{id}/submit": {
            "post": {
                "tags": ["Enrollment Drafts"],
                "summary": "Submit the reviewed enrollment",
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Review incomplete or submission in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/drafts/{id}/submission": {
            "get": {
                "tags": ["Enrollment Drafts"],
                "summary": "Submission status",
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/enrollments/drafts/{id}/review.pdf": {
            "get": {
                "tags": ["Enrollment Drafts"],
                "summary": "Download the review summary as PDF",
                "produces": ["application/pdf"],
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/enrollments/drafts/{id}/review.csv": {
            "get": {
                "tags": ["Enrollment Drafts"],
                "summary": "Download the review summary as CSV",
                "produces": ["text/csv"],
                "parameters": [{"$ref": "#/parameters/DraftID"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/catalog/subjects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Subjects offered for a class",
                "parameters": [
                    {"name": "classLevel", "in": "query", "required": true, "type": "string", "enum": ["9", "10", "11", "12"]},
                    {"name": "examGoal", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown class", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/catalog/pincodes/{pin}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Resolve a PIN code to state and city",
                "parameters": [{"name": "pin", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown PIN code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "DraftID": {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
        "Step": {"name": "step", "in": "path", "required": true, "type": "string", "enum": ["step-1", "step-2", "step-3", "review"]}
    },
    "definitions": {
        "CreateDraftRequest": {
            "type": "object",
            "properties": {
                "draftId": {"type": "string", "format": "uuid"}
            }
        },
        "EnrollmentRecord": {
            "type": "object",
            "properties": {
                "fullName": {"type": "string"},
                "email": {"type": "string"},
                "mobile": {"type": "string"},
                "classLevel": {"type": "string", "enum": ["9", "10", "11", "12"]},
                "board": {"type": "string", "enum": ["CBSE", "ICSE", "State Board"]},
                "preferredLanguage": {"type": "string", "enum": ["English", "Hindi", "Hinglish"]},
                "subjects": {"type": "array", "items": {"type": "string"}},
                "examGoal": {"type": "string", "enum": ["Board Excellence", "Concept Mastery", "Competitive Prep"]},
                "weeklyStudyHours": {"type": "integer"},
                "scholarship": {"type": "boolean"},
                "lastExamPercentage": {"type": "number"},
                "achievements": {"type": "string"},
                "pinCode": {"type": "string"},
                "state": {"type": "string"},
                "city": {"type": "string"},
                "addressLine": {"type": "string"},
                "guardianName": {"type": "string"},
                "guardianMobile": {"type": "string"},
                "paymentPlan": {"type": "string", "enum": ["Quarterly", "Half-Yearly", "Annual"]},
                "paymentMode": {"type": "string", "enum": ["UPI", "Card", "NetBanking"]}
            }
        },
        "SubmissionStatus": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "outcome": {"type": "string"},
                "reference": {"type": "string"},
                "error": {"type": "string"},
                "attempts": {"type": "integer"},
                "startedAt": {"type": "string", "format": "date-time"},
                "settledAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
