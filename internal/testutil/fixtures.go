// Package testutil provides shared testing utilities and fixtures
package testutil

// BlogOpenAPISpec describes the blog endpoints the profiles call
const BlogOpenAPISpec = `openapi: 3.0.3
info:
  title: Recipe Blog
  version: "1.0"
servers:
  - url: http://localhost:8000
paths:
  /blog:
    get:
      summary: List or search recipes
      parameters:
        - name: title
          in: query
          schema:
            type: string
        - name: ingredient
          in: query
          schema:
            type: array
            items:
              type: string
      responses:
        "200":
          description: OK
  /grocerylist/update:
    get:
      summary: Add a recipe to the grocery list
      parameters:
        - name: id
          in: query
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
`

// SessionID is the session the recipe test server accepts
const SessionID = "test-session"
