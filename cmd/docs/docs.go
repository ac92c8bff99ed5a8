// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/ledger_backend/main.go -o cmd/docs
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
        "/accounts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Open a wallet",
                "parameters": [{"in": "body", "name": "account", "required": true, "schema": {"$ref": "#/definitions/dto.OpenAccountRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/accounts/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Get the caller's wallet",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/accounts/me/display-currency": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Change display currency",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/accounts/me/pin": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Set transfer PIN",
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}}
            }
        },
        "/accounts/lookup": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Look up a receiver",
                "parameters": [{"type": "string", "in": "query", "name": "identifier", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/transfers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transfers"],
                "summary": "List transfers",
                "parameters": [
                    {"type": "string", "in": "query", "name": "direction", "default": "all"},
                    {"type": "integer", "in": "query", "name": "limit", "default": 50},
                    {"type": "string", "in": "query", "name": "nextToken"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/transfers/fiat": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transfers"],
                "summary": "Send money",
                "parameters": [{"in": "body", "name": "transfer", "required": true, "schema": {"$ref": "#/definitions/dto.CreateFiatTransferRequest"}}],
                "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/transfers/asset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transfers"],
                "summary": "Send crypto",
                "parameters": [{"in": "body", "name": "transfer", "required": true, "schema": {"$ref": "#/definitions/dto.CreateAssetTransferRequest"}}],
                "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}}
            }
        },
        "/transfers/{reference}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transfers"],
                "summary": "Get a transfer",
                "parameters": [{"type": "string", "in": "path", "name": "reference", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        }
    },
    "definitions": {
        "dto.OpenAccountRequest": {
            "type": "object",
            "required": ["email", "name", "displayCurrency"],
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "displayCurrency": {"type": "string"}}
        },
        "dto.CreateFiatTransferRequest": {
            "type": "object",
            "required": ["receiver", "amount", "pin"],
            "properties": {"receiver": {"type": "string"}, "amount": {"type": "string"}, "pin": {"type": "string"}, "memo": {"type": "string"}}
        },
        "dto.CreateAssetTransferRequest": {
            "type": "object",
            "required": ["receiver", "symbol", "quantity", "pin"],
            "properties": {"receiver": {"type": "string"}, "symbol": {"type": "string"}, "quantity": {"type": "string"}, "pin": {"type": "string"}, "memo": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "P2P Ledger API",
	Description:      "Peer-to-peer fiat and crypto transfers between wallets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
