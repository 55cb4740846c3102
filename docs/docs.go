// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
        "/analyses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["analyses"],
                "summary": "List analyses",
                "parameters": [
                    {"type": "string", "description": "Filter by candidate", "name": "candidate_id", "in": "query"},
                    {"type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "List of analyses", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analyses"],
                "summary": "Analyze a resume",
                "parameters": [
                    {"description": "Analysis request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Analysis result", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing resume_url", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "Resume not found in storage", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "File is not a valid PDF", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/analyses/async": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analyses"],
                "summary": "Queue a resume analysis",
                "parameters": [
                    {"description": "Analysis request", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AnalyzeRequest"}}
                ],
                "responses": {
                    "202": {"description": "Analysis queued", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Missing resume_url", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/analyses/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "tags": ["analyses"],
                "summary": "Export analyses as CSV",
                "parameters": [
                    {"type": "string", "name": "candidate_id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "default": "analyses", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "CSV file", "schema": {"type": "file"}}
                }
            }
        },
        "/analyses/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["analyses"],
                "summary": "Get an analysis",
                "parameters": [
                    {"type": "string", "description": "Analysis ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Analysis", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "404": {"description": "Analysis not found", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/extract": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/pdf", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["extract"],
                "summary": "Extract text from a PDF",
                "parameters": [
                    {"type": "file", "description": "PDF file (multipart form)", "name": "file", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Extracted text and diagnostics", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Empty body", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "Not a PDF or no extractable text", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        },
        "/resumes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "List uploaded resumes",
                "responses": {
                    "200": {"description": "List of resumes", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/resumes/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Upload a resume",
                "parameters": [
                    {"type": "file", "description": "Resume PDF", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Resume uploaded", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}},
                    "422": {"description": "File is not a valid PDF", "schema": {"$ref": "#/definitions/handler.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {}
            }
        },
        "handler.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "resume_url": {"type": "string"},
                "candidate_id": {"type": "string"},
                "role": {"type": "string", "example": "Backend Engineer"},
                "profile_hint": {"type": "string"}
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/handler.APIError"}
            }
        },
        "handler.PagMeta": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "offset": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "data": {},
                "meta": {"$ref": "#/definitions/handler.PagMeta"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "talentmatch API",
	Description:      "Resume text extraction and screening service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
