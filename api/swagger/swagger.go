package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Oratoria API",
        "description": "Coaching dashboard for recorded presentations: emotion scoring, history and feedback.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Dashboard", "description": "Home view and bar series"},
        {"name": "Presentations", "description": "History, uploads, audio and favourites"},
        {"name": "Feedback", "description": "Per-presentation coaching view"},
        {"name": "Language", "description": "Transcript analysis"},
        {"name": "Exports", "description": "Asynchronous history exports"},
        {"name": "Ops", "description": "Health and metrics"}
    ],
    "paths": {
        "/dashboard/home": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Home dashboard of the caller",
                "parameters": [
                    {"name": "period", "in": "query", "type": "string", "enum": ["7d", "30d", "6m", "1y", "custom"]},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"},
                    {"name": "userId", "in": "query", "type": "string", "description": "Coached user (coach/admin)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HomeDashboard"}},
                    "400": {"description": "Invalid period", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upstream failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/bars": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Presentation counts per bucket",
                "parameters": [
                    {"name": "period", "in": "query", "type": "string", "enum": ["7d", "30d", "6m", "1y", "custom"]},
                    {"name": "start", "in": "query", "type": "string", "format": "date"},
                    {"name": "end", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/BarChart"}}
                }
            }
        },
        "/users/{id}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Home dashboard of a coached user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HomeDashboard"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/presentations": {
            "get": {
                "tags": ["Presentations"],
                "summary": "Paginated presentation history",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "emotion", "in": "query", "type": "string"},
                    {"name": "favorites", "in": "query", "type": "boolean"},
                    {"name": "userId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/presentations/upload": {
            "post": {
                "tags": ["Presentations"],
                "summary": "Upload a recording for analysis",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "audio", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid file", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/presentations/{id}/feedback": {
            "get": {
                "tags": ["Feedback"],
                "summary": "Feedback view of one presentation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "userId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/presentations/{id}/audio": {
            "get": {
                "tags": ["Presentations"],
                "summary": "Signed audio URL and transcript",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/presentations/{id}/favorite": {
            "put": {
                "tags": ["Presentations"],
                "summary": "Mark a presentation as favourite",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Presentations"],
                "summary": "Unmark a favourite presentation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/language/analyze": {
            "post": {
                "tags": ["Language"],
                "summary": "Language metrics of free text",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"text": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LanguageMetrics"}}
                }
            }
        },
        "/language/suggestions": {
            "post": {
                "tags": ["Language"],
                "summary": "Split a suggestions block into items",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"raw": {"type": "string"}, "text": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Request a history export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ExportJob"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ExportJob"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "security": [],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Ops"],
                "summary": "Aggregated process metrics (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "HomeDashboard": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "hasData": {"type": "boolean"},
                "totals": {"type": "object"},
                "recent": {"type": "array", "items": {"type": "object"}},
                "line": {"type": "object"},
                "gauge": {"type": "object"},
                "trends": {"type": "object"},
                "topEmotion": {"type": "object"},
                "bars": {"$ref": "#/definitions/BarChart"},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "BarChart": {
            "type": "object",
            "properties": {
                "period": {"type": "string"},
                "granularity": {"type": "string", "enum": ["day", "week", "month", "quarter"]},
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "keys": {"type": "array", "items": {"type": "string"}},
                "labels": {"type": "array", "items": {"type": "string"}},
                "counts": {"type": "array", "items": {"type": "integer"}},
                "total": {"type": "integer"}
            }
        },
        "LanguageMetrics": {
            "type": "object",
            "properties": {
                "total_words": {"type": "integer"},
                "positive_words": {"type": "integer"},
                "negative_words": {"type": "integer"},
                "filler_count": {"type": "integer"},
                "good_examples": {"type": "array", "items": {"type": "string"}},
                "bad_examples": {"type": "array", "items": {"type": "string"}},
                "filler_examples": {"type": "array", "items": {"type": "string"}},
                "tips": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "period": {"type": "string", "enum": ["7d", "30d", "6m", "1y", "custom"]},
                "start": {"type": "string", "format": "date"},
                "end": {"type": "string", "format": "date"},
                "emotion": {"type": "string"},
                "favorites": {"type": "boolean"},
                "userId": {"type": "string"}
            }
        },
        "ExportJob": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "format": {"type": "string"},
                "status": {"type": "string", "enum": ["QUEUED", "PROCESSING", "FINISHED", "FAILED", "EXPIRED"]},
                "progress": {"type": "integer"},
                "resultUrl": {"type": "string"},
                "error": {"type": "string"}
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
                "meta": {"$ref": "#/definitions/ResponseMeta"}
            }
        },
        "ResponseMeta": {
            "type": "object",
            "properties": {
                "cache_hit": {"type": "boolean"},
                "source": {"type": "string", "enum": ["cache", "upstream"]},
                "processing_time_ms": {"type": "integer"},
                "period": {"type": "string"},
                "window_start": {"type": "string", "format": "date"},
                "window_end": {"type": "string", "format": "date"},
                "granularity": {"type": "string"},
                "timezone": {"type": "string"}
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
