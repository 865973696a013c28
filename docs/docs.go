// Package docs registers the swagger document served at /swagger/*any.
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
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/register/": {"post": {"tags": ["users"], "summary": "Register a new user"}},
        "/verify/{token}": {"get": {"tags": ["users"], "summary": "Confirm an email address"}},
        "/token/": {
            "post": {"tags": ["users"], "summary": "Log in and receive a bearer token"},
            "delete": {"tags": ["users"], "summary": "Log out", "security": [{"Bearer": []}]}
        },
        "/users/": {"get": {"tags": ["users"], "summary": "List users", "security": [{"Bearer": []}]}},
        "/users/{id}": {"delete": {"tags": ["users"], "summary": "Delete a user", "security": [{"Bearer": []}]}},
        "/cities/": {"get": {"tags": ["weather"], "summary": "List known cities"}},
        "/cities/{city}/{country}/weather/": {"get": {"tags": ["weather"], "summary": "Get current weather for a city"}},
        "/cities/{city}/{country}/weather/subscription/": {
            "post": {"tags": ["subscription"], "summary": "Subscribe to weather updates for a city", "security": [{"Bearer": []}]},
            "put": {"tags": ["subscription"], "summary": "Replace delivery settings of a subscription", "security": [{"Bearer": []}]},
            "delete": {"tags": ["subscription"], "summary": "Unsubscribe from a city", "security": [{"Bearer": []}]}
        },
        "/subscription/": {"get": {"tags": ["subscription"], "summary": "List own subscriptions", "security": [{"Bearer": []}]}},
        "/subscription/{id}": {"get": {"tags": ["subscription"], "summary": "View one own subscription", "security": [{"Bearer": []}]}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/",
	Schemes:          []string{},
	Title:            "Weather Push API",
	Description:      "API for periodic weather updates by email and webhook",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
