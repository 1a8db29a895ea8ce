package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Grade Calculator API",
        "description": "Two-period weighted grade calculator with GPE conversion and pass projection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Calculator", "description": "Period grades, final grade, GPE and projections"}
    ],
    "paths": {
        "/calculator/calculate": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Calculate period grades, final grade, GPE and points needed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalculateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/period": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Calculate a single period grade",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid fields", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/final": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Combine midterm and finals grades",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodGrades"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/points-needed": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Score still needed in the pending period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodGrades"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/validate": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Validate a single form field",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateFieldRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/gpe": {
            "get": {
                "tags": ["Calculator"],
                "summary": "Grade point equivalent, colour band and display string of a grade",
                "parameters": [
                    {"name": "grade", "in": "query", "required": true, "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid grade", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/export": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Download a grade sheet for a full calculation",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CalculateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Grade sheet", "schema": {"type": "file"}},
                    "400": {"description": "Invalid fields or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Exports disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "FormValue": {
            "description": "Number, numeric string, or null/empty string when not entered"
        },
        "PeriodPayload": {
            "type": "object",
            "properties": {
                "quizScores": {"type": "array", "maxItems": 2, "items": {"$ref": "#/definitions/FormValue"}},
                "quizMaxScores": {"type": "array", "maxItems": 2, "items": {"$ref": "#/definitions/FormValue"}},
                "examScore": {"$ref": "#/definitions/FormValue"},
                "examMaxScore": {"$ref": "#/definitions/FormValue"},
                "attendance": {"$ref": "#/definitions/FormValue"},
                "problemSet": {"$ref": "#/definitions/FormValue"}
            }
        },
        "CalculateRequest": {
            "type": "object",
            "properties": {
                "midterm": {"$ref": "#/definitions/PeriodPayload"},
                "finals": {"$ref": "#/definitions/PeriodPayload"},
                "target": {"type": "number"}
            }
        },
        "PeriodGrades": {
            "type": "object",
            "required": ["midterm", "finals"],
            "properties": {
                "midterm": {"type": "number"},
                "finals": {"type": "number"},
                "target": {"type": "number"}
            }
        },
        "ValidateFieldRequest": {
            "type": "object",
            "required": ["field"],
            "properties": {
                "field": {"type": "string", "enum": ["quizScores", "quizMaxScores", "examScore", "examMaxScore", "attendance", "problemSet"]},
                "value": {"$ref": "#/definitions/FormValue"},
                "max": {"type": "number"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
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
