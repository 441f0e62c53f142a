package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Accompaniment Planner API",
        "description": "Weekly classroom accompaniment visit planning",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Planner", "description": "Planning sessions, weekly selection and confirmation"},
        {"name": "Availability", "description": "Declared availability blocks"}
    ],
    "paths": {
        "/planner/session": {
            "post": {
                "tags": ["Planner"],
                "summary": "Load or refresh the planning session",
                "parameters": [
                    {"name": "refresh", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/LoadPlanningSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown specialist", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Planner"],
                "summary": "Discard the planning session",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/planner/weeks/{weekId}": {
            "get": {
                "tags": ["Planner"],
                "summary": "Week planning view",
                "parameters": [{"$ref": "#/parameters/weekId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Planner"],
                "summary": "Discard the week's local selection",
                "parameters": [{"$ref": "#/parameters/weekId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/planner/weeks/{weekId}/selections/{teacherId}": {
            "put": {
                "tags": ["Planner"],
                "summary": "Select a teacher's session",
                "parameters": [
                    {"$ref": "#/parameters/weekId"},
                    {"$ref": "#/parameters/teacherId"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slot conflict, budget exceeded or confirmation in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Session outside availability or in the past", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Planner"],
                "summary": "Deselect a teacher",
                "parameters": [{"$ref": "#/parameters/weekId"}, {"$ref": "#/parameters/teacherId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/planner/weeks/{weekId}/auto-assign": {
            "post": {
                "tags": ["Planner"],
                "summary": "Greedy auto-assignment",
                "parameters": [{"$ref": "#/parameters/weekId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/planner/weeks/{weekId}/confirm": {
            "post": {
                "tags": ["Planner"],
                "summary": "Confirm the week with the assignment service",
                "parameters": [{"$ref": "#/parameters/weekId"}],
                "responses": {
                    "200": {"description": "CONFIRMED, PARTIAL or STALE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Confirmation service unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/planner/weeks/{weekId}/export": {
            "get": {
                "tags": ["Planner"],
                "summary": "Download the week's plan",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"$ref": "#/parameters/weekId"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/planner/budget/{month}": {
            "get": {
                "tags": ["Planner"],
                "summary": "Monthly hour budget",
                "parameters": [{"name": "month", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List availability blocks",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Add a block, merging with neighbours",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityBlockRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/availability/{id}": {
            "put": {
                "tags": ["Availability"],
                "summary": "Edit a block, merging with neighbours",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityBlockRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete a block",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "parameters": {
        "weekId": {"name": "weekId", "in": "path", "required": true, "type": "string", "description": "ISO week, e.g. 2026-W42"},
        "teacherId": {"name": "teacherId", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "LoadPlanningSessionRequest": {
            "type": "object",
            "properties": {"specialistId": {"type": "string"}}
        },
        "SelectSessionRequest": {
            "type": "object",
            "required": ["sessionIndex"],
            "properties": {"sessionIndex": {"type": "integer", "minimum": 0}}
        },
        "AvailabilityBlockRequest": {
            "type": "object",
            "required": ["dayOfWeek", "startTime", "endTime"],
            "properties": {
                "specialistId": {"type": "string"},
                "dayOfWeek": {"type": "string", "example": "MONDAY"},
                "startTime": {"type": "string", "example": "08:30"},
                "endTime": {"type": "string", "example": "1230"},
                "inPersonHours": {"type": "number"},
                "remoteHours": {"type": "number"}
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
