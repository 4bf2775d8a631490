package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "FeedbackLens Backend",
    "description": "API for customer feedback sentiment analysis and improvement recommendations",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {
      "get": {
        "tags": ["health"],
        "summary": "Service health",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "OK"},
          "503": {"description": "Database unavailable"}
        }
      }
    },
    "/api/upload": {
      "post": {
        "tags": ["analyze"],
        "summary": "Analyze uploaded feedback CSV",
        "description": "Upload a CSV of customer comments and run the sentiment pipeline over it",
        "consumes": ["multipart/form-data"],
        "produces": ["application/json"],
        "parameters": [
          {"name": "file", "in": "formData", "type": "file", "required": true, "description": "feedback.csv"},
          {"name": "model", "in": "formData", "type": "string", "required": false, "description": "AI provider override (openai, anthropic, local, mock)"}
        ],
        "responses": {
          "200": {"description": "Analysis result"},
          "400": {"description": "Bad request, unusable CSV, or unknown model"}
        }
      }
    },
    "/api/analyze-url": {
      "post": {
        "tags": ["analyze"],
        "summary": "Analyze a product page URL",
        "description": "Fetch comments for a product page via the extraction collaborator and run the pipeline",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [
          {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnalyzeURLRequest"}}
        ],
        "responses": {
          "200": {"description": "Analysis result"},
          "400": {"description": "Invalid payload"},
          "404": {"description": "No comments found on the provided URL"}
        }
      }
    },
    "/api/sentiment-summary": {
      "get": {
        "tags": ["summary"],
        "summary": "Latest sentiment summary",
        "description": "Returns the most recent successful analysis in dashboard shape, or a zeroed placeholder",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "Dashboard result"}
        }
      }
    },
    "/api/runs": {
      "get": {
        "tags": ["runs"],
        "summary": "Recent runs",
        "produces": ["application/json"],
        "parameters": [
          {"name": "limit", "in": "query", "type": "integer", "required": false, "description": "maximum runs to return (default 20)"}
        ],
        "responses": {
          "200": {"description": "Run list"},
          "404": {"description": "Run history is disabled"}
        }
      }
    },
    "/api/runs/latest": {
      "get": {
        "tags": ["runs"],
        "summary": "Latest run",
        "produces": ["application/json"],
        "responses": {
          "200": {"description": "Run record"},
          "404": {"description": "No runs found"}
        }
      }
    }
  },
  "definitions": {
    "AnalyzeURLRequest": {
      "type": "object",
      "required": ["url"],
      "properties": {
        "url": {"type": "string"},
        "max_comments": {"type": "integer", "minimum": 1},
        "model": {"type": "string"}
      }
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
