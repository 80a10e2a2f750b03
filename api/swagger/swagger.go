package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutoring Admin API",
        "description": "Attendance, score entry, printable reports and monthly comments for a tutoring center",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Sessions", "description": "Class sessions and attendance"},
        {"name": "Scores", "description": "Manual score entries of a session"},
        {"name": "Reports", "description": "Printable reports and score sheet exports"},
        {"name": "Comments", "description": "Monthly report comments"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get a session with its attendance roster",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List a class's sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "type": "string", "format": "date"},
                    {"name": "to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}/attendance/{studentId}": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Record a student's attendance for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}/students/{studentId}/scores": {
            "get": {
                "tags": ["Scores"],
                "summary": "List a student's scores for a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Scores"],
                "summary": "Add or edit a manual score",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Session no longer exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Cross-session write, class mismatch or duplicate entry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Session store unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Scores"],
                "summary": "Delete a manual score",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeleteScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Cross-session write or class mismatch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}/students/{studentId}/print-link": {
            "post": {
                "tags": ["Reports"],
                "summary": "Issue a signed link to the printable report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/print/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Render the printable report",
                "produces": ["text/html"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "HTML report"},
                    "401": {"description": "Invalid or expired link"}
                }
            }
        },
        "/api/v1/sessions/{id}/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the session score sheet",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/api/v1/classes/{id}/students/{studentId}/monthly-summary": {
            "get": {
                "tags": ["Comments"],
                "summary": "Summarise a student's month in a class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/comments/suggest": {
            "post": {
                "tags": ["Comments"],
                "summary": "Draft a monthly comment with the AI assistant",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SuggestCommentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Suggestions disabled or no sessions in month", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/comments": {
            "get": {
                "tags": ["Comments"],
                "summary": "List a class's monthly comments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/comments": {
            "put": {
                "tags": ["Comments"],
                "summary": "Save the monthly comment of a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveCommentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/comments/{id}": {
            "delete": {
                "tags": ["Comments"],
                "summary": "Delete a monthly comment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Not the author", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ScoreKey": {
            "type": "object",
            "required": ["name", "date"],
            "properties": {
                "name": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "sessionId": {"type": "string"},
                "classId": {"type": "string"}
            }
        },
        "ScoreCandidate": {
            "type": "object",
            "required": ["name", "date"],
            "properties": {
                "name": {"type": "string"},
                "score": {"type": "number", "minimum": 0, "maximum": 10, "multipleOf": 0.5},
                "date": {"type": "string", "format": "date"},
                "note": {"type": "string"}
            }
        },
        "UpsertScoreRequest": {
            "type": "object",
            "required": ["classId", "score"],
            "properties": {
                "classId": {"type": "string"},
                "score": {"$ref": "#/definitions/ScoreCandidate"},
                "editing": {"$ref": "#/definitions/ScoreKey"}
            }
        },
        "DeleteScoreRequest": {
            "type": "object",
            "required": ["classId", "target"],
            "properties": {
                "classId": {"type": "string"},
                "target": {"$ref": "#/definitions/ScoreKey"}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "present": {"type": "boolean"},
                "late": {"type": "boolean"},
                "excused": {"type": "boolean"},
                "homeworkPercent": {"type": "number", "minimum": 0, "maximum": 100},
                "testName": {"type": "string"},
                "testScore": {"type": "number", "minimum": 0, "maximum": 10},
                "bonusPoints": {"type": "number", "minimum": 0},
                "note": {"type": "string"}
            }
        },
        "SuggestCommentRequest": {
            "type": "object",
            "required": ["classId", "studentId", "month"],
            "properties": {
                "classId": {"type": "string"},
                "studentId": {"type": "string"},
                "month": {"type": "string"},
                "tone": {"type": "string", "enum": ["encouraging", "neutral", "strict"]}
            }
        },
        "SaveCommentRequest": {
            "type": "object",
            "required": ["studentId", "classId", "month", "content"],
            "properties": {
                "studentId": {"type": "string"},
                "classId": {"type": "string"},
                "month": {"type": "string"},
                "content": {"type": "string"},
                "aiSuggested": {"type": "boolean"}
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
