// Package docs registers the OpenAPI description of the provider API with swag.
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
        "/complete": {
            "get": {
                "produces": ["application/x-ndjson"],
                "summary": "Stream suggestion batches for a partial query",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"},
                    {"type": "number", "name": "lat_delta", "in": "query"},
                    {"type": "number", "name": "lon_delta", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "category", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "result_type", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "one JSON array of suggestions per line"}}
            }
        },
        "/search": {
            "get": {
                "produces": ["application/json"],
                "summary": "Search places by text or suggestion handle",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "handle", "in": "query"},
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"},
                    {"type": "number", "name": "lat_delta", "in": "query"},
                    {"type": "number", "name": "lon_delta", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SearchResponse"}}}
            }
        },
        "/places/{handle}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Look up a place by handle",
                "parameters": [{"type": "string", "name": "handle", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PlaceItem"}}}
            }
        },
        "/features/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Resolve a tapped map feature",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PlaceItem"}}}
            }
        },
        "/reverse-geocode": {
            "get": {
                "produces": ["application/json"],
                "summary": "Placemark nearest to a coordinate",
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "name": "lon", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Placemark"}},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "definitions": {
        "models.Coordinate": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "models.SearchRegion": {
            "type": "object",
            "properties": {
                "center": {"$ref": "#/definitions/models.Coordinate"},
                "latitude_delta": {"type": "number"},
                "longitude_delta": {"type": "number"}
            }
        },
        "models.PlaceItem": {
            "type": "object",
            "properties": {
                "handle": {"type": "string"},
                "name": {"type": "string"},
                "formatted_address": {"type": "string"},
                "phone": {"type": "string"},
                "url": {"type": "string"},
                "category": {"type": "string"},
                "coordinate": {"$ref": "#/definitions/models.Coordinate"}
            }
        },
        "models.SearchResponse": {
            "type": "object",
            "properties": {
                "places": {"type": "array", "items": {"$ref": "#/definitions/models.PlaceItem"}},
                "region": {"$ref": "#/definitions/models.SearchRegion"}
            }
        },
        "models.Placemark": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "street": {"type": "string"},
                "sub_locality": {"type": "string"},
                "locality": {"type": "string"},
                "administrative_area": {"type": "string"},
                "postal_code": {"type": "string"},
                "country": {"type": "string"},
                "coordinate": {"$ref": "#/definitions/models.Coordinate"}
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
	Title:            "Points of Interest API",
	Description:      "Place completion, search and reverse geocoding for the local search client.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
