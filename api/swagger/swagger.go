package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Forum Contractuels Inscriptions API",
        "description": "Registration form and admin dashboard for the Forum Contractuels.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "AdminSession": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "tags": [
        {"name": "Registration", "description": "Public registration form"},
        {"name": "Admin", "description": "Dashboard, session required"},
        {"name": "System", "description": "Probes and metrics"}
    ],
    "paths": {
        "/event": {
            "get": {
                "tags": ["Registration"],
                "summary": "Event details",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/inscriptions/check": {
            "get": {
                "tags": ["Registration"],
                "summary": "Check whether a registration code is already used",
                "parameters": [{"name": "code", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CodeCheckEnvelope"}}}
            }
        },
        "/inscriptions": {
            "post": {
                "tags": ["Registration"],
                "summary": "Submit a registration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Registration"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Code already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Open an admin session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/logout": {
            "post": {
                "tags": ["Admin"],
                "summary": "Clear the session cookie",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/admin/session": {
            "get": {
                "tags": ["Admin"],
                "summary": "Session probe",
                "security": [{"AdminSession": []}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/admin/inscriptions": {
            "get": {
                "tags": ["Admin"],
                "summary": "List registrations",
                "security": [{"AdminSession": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["date_desc", "date_asc", "nom_asc", "nom_desc", "statut"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/inscriptions/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export registrations",
                "security": [{"AdminSession": []}],
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sort", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Dashboard counters",
                "security": [{"AdminSession": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/inscriptions/{id}/status": {
            "patch": {
                "tags": ["Admin"],
                "summary": "Update status and comment",
                "security": [{"AdminSession": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/inscriptions/{id}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete a registration",
                "security": [{"AdminSession": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/admin/configuration/notification-email": {
            "get": {
                "tags": ["Admin"],
                "summary": "Notification recipient",
                "security": [{"AdminSession": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Admin"],
                "summary": "Change the notification recipient",
                "security": [{"AdminSession": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EmailRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/notifications/test": {
            "post": {
                "tags": ["Admin"],
                "summary": "Send a test notification",
                "security": [{"AdminSession": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EmailRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "Registration": {
            "type": "object",
            "required": ["nom", "prenom", "numero_cp", "lieu_affectation_uo"],
            "properties": {
                "nom": {"type": "string"},
                "prenom": {"type": "string"},
                "numero_cp": {"type": "string", "pattern": "^[A-Za-z0-9]{3,10}$"},
                "lieu_affectation_uo": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "StatusUpdate": {
            "type": "object",
            "required": ["statut"],
            "properties": {
                "statut": {"type": "string", "enum": [
                    "Demande reçue",
                    "Demande de dégagement demandée",
                    "Demande acceptée",
                    "Demande refusée",
                    "Réponse transmise à l'agent"
                ]},
                "commentaires": {"type": "string"}
            }
        },
        "EmailRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string"}}
        },
        "CodeCheck": {
            "type": "object",
            "properties": {
                "numero_cp": {"type": "string"},
                "valid": {"type": "boolean"},
                "available": {"type": "boolean"},
                "verified": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "CodeCheckEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/CodeCheck"},
                "meta": {"type": "object"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "field": {"type": "string"}
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
