package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>lifeshield-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the main endpoint groups. The uniform
// resource routes share one shape, so only one representative per group is
// spelled out.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "lifeshield-api", "version": "v1.0.0" },
  "paths": {
    "/customer/login": {
      "post": {
        "summary": "Exchange a Firebase ID token for a local bearer token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"idToken":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token issued" }, "400": { "description": "idToken missing" }, "401": { "description": "invalid id token" }, "429": { "description": "rate limited" } }
      }
    },
    "/customer/protected": {
      "get": { "summary": "Check the bearer token and echo its claims", "responses": { "200": { "description": "claims" }, "401": { "description": "missing or invalid token" } } }
    },
    "/admin/delete": {
      "delete": { "summary": "Confirm admin access", "responses": { "200": { "description": "granted" }, "403": { "description": "not admin" } } }
    },
    "/create-payment-intent": {
      "post": {
        "summary": "Create a payment intent for checkout",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"amount":{"type":"number"}}}}}},
        "responses": { "200": { "description": "client secret" }, "400": { "description": "amount must be positive" }, "429": { "description": "rate limited" } }
      }
    },
    "/blogpostHome": {
      "get": { "summary": "List blog posts (paginated envelope)", "responses": { "200": { "description": "data, total, totalPages, page, limit" } } },
      "post": { "summary": "Create a blog post", "responses": { "201": { "description": "created document" }, "400": { "description": "validation error" } } }
    },
    "/blogpostHome/search": {
      "get": { "summary": "Search blog posts by keyword and tags", "responses": { "200": { "description": "matching posts" } } }
    },
    "/blogpostHome/{id}": {
      "get": { "summary": "Fetch one blog post", "responses": { "200": { "description": "document" }, "400": { "description": "invalid id" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Merge fields into a blog post", "responses": { "200": { "description": "updated document" } } },
      "delete": { "summary": "Delete a blog post", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/blogpostHome/{id}/increment-view": {
      "post": { "summary": "Atomically bump the view counter", "responses": { "200": { "description": "new count" } } }
    },
    "/management": {
      "get": { "summary": "List insurance applications", "responses": { "200": { "description": "paginated applications" } } },
      "post": { "summary": "Submit an insurance application (auth required)", "responses": { "201": { "description": "created" }, "401": { "description": "missing token" } } }
    },
    "/bookInsurance/user/{email}": {
      "get": { "summary": "List bookings for a user", "responses": { "200": { "description": "bookings" } } }
    },
    "/media/upload": {
      "post": { "summary": "Upload a media file (multipart, field \"file\")", "responses": { "201": { "description": "key and presigned url" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics exposition" } } } }
  }
}`
