// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/quizzes/generate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "Generate a quiz",
                "parameters": [
                    {"description": "Quiz parameters", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.GenerateQuizReq"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/quizzes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "List quizzes",
                "parameters": [
                    {"type": "string", "description": "Class filter", "name": "classId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/quizzes/{id}/attempts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quizzes"],
                "summary": "Submit a quiz attempt",
                "parameters": [
                    {"type": "integer", "description": "Quiz ID", "name": "id", "in": "path", "required": true},
                    {"description": "Answers", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.SubmitAttemptReq"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/quizzes/analytics/weak-areas/{studentId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Recompute weak areas",
                "parameters": [
                    {"type": "integer", "description": "Student ID", "name": "studentId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        }
    },
    "definitions": {
        "controller.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "service.GenerateQuizReq": {
            "type": "object",
            "required": ["classId", "subject"],
            "properties": {
                "classId": {"type": "string"},
                "subject": {"type": "string"},
                "topics": {"type": "array", "items": {"type": "string"}},
                "numQuestions": {"type": "integer"}
            }
        },
        "service.SubmitAttemptReq": {
            "type": "object",
            "properties": {
                "answers": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "util.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Learning System API",
	Description:      "School learning management backend: syllabus tracking, generated quizzes, attempt scoring, weak-area analytics and class chat.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
