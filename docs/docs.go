// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/purchases": {
            "post": {
                "description": "Quantity accepts a number or a numeric string; NumEntradas is accepted when Quantity is absent.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["purchases"],
                "summary": "Purchase tickets for an event",
                "parameters": [
                    {"description": "Purchase", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.purchaseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.purchaseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List active events",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.listEventsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "put": {
                "description": "Only EventName, EventDate, EventStatus, EventCountry, EventCity and Quantity can change.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Update an event",
                "parameters": [
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.eventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "description": "Only ADMIN users may create events.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Create an event",
                "parameters": [
                    {"description": "Event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.eventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "delete": {
                "description": "Returns the deleted event. Registrations for it are kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Delete an event",
                "parameters": [
                    {"description": "Event and acting user", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.deleteEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.eventResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get an event",
                "parameters": [
                    {"type": "string", "description": "Event id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Event"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users": {
            "post": {
                "description": "The body may be base64-encoded JSON (Content-Transfer-Encoding: base64).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Sign up a user",
                "parameters": [
                    {"description": "User", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.createUserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.readinessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Event": {
            "type": "object",
            "properties": {
                "EventId": {"type": "string"},
                "EventName": {"type": "string"},
                "EventDate": {"type": "string"},
                "EventStatus": {"type": "string", "enum": ["ACTIVE", "DEACTIVATED", "DISABLED", "INHIBITED"]},
                "EventCountry": {"type": "string"},
                "EventCity": {"type": "string"},
                "Quantity": {"type": "integer"},
                "UserId": {"type": "string"},
                "CreatedAt": {"type": "string"},
                "UpdatedAt": {"type": "string"}
            }
        },
        "handler.createEventRequest": {
            "type": "object",
            "required": ["EventId", "UserId"],
            "properties": {
                "UserId": {"type": "string"},
                "EventId": {"type": "string"},
                "EventName": {"type": "string"},
                "EventDate": {"type": "string"},
                "EventStatus": {"type": "string"},
                "EventCountry": {"type": "string"},
                "EventCity": {"type": "string"},
                "Quantity": {"type": "integer"}
            }
        },
        "handler.updateEventRequest": {
            "type": "object",
            "properties": {
                "UserId": {"type": "string"},
                "EventId": {"type": "string"},
                "EventName": {"type": "string"},
                "EventDate": {"type": "string"},
                "EventStatus": {"type": "string"},
                "EventCountry": {"type": "string"},
                "EventCity": {"type": "string"},
                "Quantity": {"type": "integer"}
            }
        },
        "handler.deleteEventRequest": {
            "type": "object",
            "required": ["EventId", "UserId"],
            "properties": {
                "UserId": {"type": "string"},
                "EventId": {"type": "string"}
            }
        },
        "handler.eventResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "event": {"$ref": "#/definitions/domain.Event"}
            }
        },
        "handler.listEventsResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "count": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.Event"}}
            }
        },
        "handler.purchaseRequest": {
            "type": "object",
            "required": ["EventId", "UserId"],
            "properties": {
                "UserId": {"type": "string"},
                "EventId": {"type": "string"},
                "Quantity": {"type": "integer"},
                "NumEntradas": {"type": "integer"},
                "RegistrationId": {"type": "string"}
            }
        },
        "handler.purchaseResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "RegistrationId": {"type": "string"},
                "EventId": {"type": "string"},
                "UserId": {"type": "string"},
                "Quantity": {"type": "integer"},
                "warn": {"type": "string"}
            }
        },
        "handler.createUserRequest": {
            "type": "object",
            "required": ["email", "name", "role", "userId"],
            "properties": {
                "userId": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "CLIENT"]}
            }
        },
        "handler.createUserResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "handler.dependencyStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.readinessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.dependencyStatus"}}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "detail": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ticketing API",
	Description:      "Ticketed-event purchases, event administration and user signup.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
