// Package docs holds the OpenAPI description served at /swagger/.
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
		"/compress": {
			"post": {
				"description": "Re-encodes the uploaded image in its own format at the given quality",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"images"
				],
				"summary": "Compress an image",
				"parameters": [
					{
						"type": "file",
						"description": "Image (png, jpeg, gif, bmp, tiff, webp)",
						"name": "image",
						"in": "formData",
						"required": true
					},
					{
						"type": "integer",
						"description": "Quality 1-100",
						"name": "quality",
						"in": "formData",
						"default": 30
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/compress-pdf": {
			"post": {
				"description": "Rewrites the PDF with Ghostscript when installed, otherwise with pdfcpu optimization",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"pdf"
				],
				"summary": "Compress a PDF",
				"parameters": [
					{
						"type": "file",
						"description": "PDF document",
						"name": "pdf",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "low, medium or high",
						"name": "compression_level",
						"in": "formData",
						"default": "medium"
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/convert-doc-pdf": {
			"post": {
				"description": "Converts a DOCX or DOC document to PDF. Without LibreOffice only DOCX is supported and is rendered natively.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"documents"
				],
				"summary": "Convert Word to PDF",
				"parameters": [
					{
						"type": "file",
						"description": "DOCX or DOC document",
						"name": "document",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/convert-image": {
			"post": {
				"description": "Converts the uploaded image to another format",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"images"
				],
				"summary": "Convert an image",
				"parameters": [
					{
						"type": "file",
						"description": "Image",
						"name": "image",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "png, jpeg, gif, bmp or tiff",
						"name": "target_format",
						"in": "formData",
						"required": true
					},
					{
						"type": "integer",
						"description": "JPEG quality 1-100",
						"name": "quality",
						"in": "formData",
						"default": 90
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/convert-pdf-doc": {
			"post": {
				"description": "Converts a PDF into a DOCX document with LibreOffice",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"documents"
				],
				"summary": "Convert PDF to Word",
				"parameters": [
					{
						"type": "file",
						"description": "PDF document",
						"name": "pdf",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/download-bg-removed/{filename}": {
			"get": {
				"description": "Streams a background removal result as a PNG attachment",
				"produces": [
					"image/png"
				],
				"tags": [
					"files"
				],
				"summary": "Download a background-removed image",
				"parameters": [
					{
						"type": "string",
						"description": "Stored filename from the result page",
						"name": "filename",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Download name",
						"name": "name",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "PNG download",
						"schema": {
							"type": "file"
						}
					},
					"404": {
						"description": "File not found",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/download/{filename}": {
			"get": {
				"description": "Streams a produced file as an attachment. The optional name parameter renames the download; the stored extension is always kept.",
				"produces": [
					"application/octet-stream"
				],
				"tags": [
					"files"
				],
				"summary": "Download a result file",
				"parameters": [
					{
						"type": "string",
						"description": "Stored filename from the result page",
						"name": "filename",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"description": "Download name",
						"name": "name",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "File download",
						"schema": {
							"type": "file"
						}
					},
					"404": {
						"description": "File not found",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/edit-pdf": {
			"post": {
				"description": "action=merge takes two or more files under pdfs. split takes page_ranges such as \"1-3, 5\". rotate takes rotation and an optional page_range. extract takes pages such as \"1, 3, 5\".",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"pdf"
				],
				"summary": "Merge, split, rotate or extract PDF pages",
				"parameters": [
					{
						"type": "string",
						"description": "merge, split, rotate or extract",
						"name": "action",
						"in": "formData",
						"required": true
					},
					{
						"type": "array",
						"items": {
							"type": "file"
						},
						"description": "PDFs to merge, in order",
						"name": "pdfs",
						"in": "formData"
					},
					{
						"type": "file",
						"description": "PDF for split, rotate and extract",
						"name": "pdf",
						"in": "formData"
					},
					{
						"type": "string",
						"description": "Split ranges",
						"name": "page_ranges",
						"in": "formData"
					},
					{
						"type": "integer",
						"description": "90, 180, 270 or their negatives",
						"name": "rotation",
						"in": "formData"
					},
					{
						"type": "string",
						"description": "Pages to rotate, all when empty",
						"name": "page_range",
						"in": "formData"
					},
					{
						"type": "string",
						"description": "Pages to extract",
						"name": "pages",
						"in": "formData"
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/healthz": {
			"get": {
				"description": "Reports liveness and which optional external tools were found at startup",
				"produces": [
					"application/json"
				],
				"tags": [
					"system"
				],
				"summary": "Health check",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handlers.HealthResponse"
						}
					}
				}
			}
		},
		"/qr": {
			"post": {
				"description": "Encodes text as a PNG QR code. Invalid colors fall back to black on white and the page notes it.",
				"consumes": [
					"application/x-www-form-urlencoded"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"qr"
				],
				"summary": "Generate a QR code",
				"parameters": [
					{
						"type": "string",
						"description": "Text or URL",
						"name": "data",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "L, M, Q or H",
						"name": "error_correction",
						"in": "formData",
						"default": "M"
					},
					{
						"type": "integer",
						"description": "Pixels per module",
						"name": "module_size",
						"in": "formData",
						"default": 10
					},
					{
						"type": "integer",
						"description": "Quiet zone in modules",
						"name": "border",
						"in": "formData",
						"default": 4
					},
					{
						"type": "string",
						"description": "Module color as #rrggbb",
						"name": "fill_color",
						"in": "formData",
						"default": "#000000"
					},
					{
						"type": "string",
						"description": "Background color as #rrggbb",
						"name": "background_color",
						"in": "formData",
						"default": "#ffffff"
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/remove-background": {
			"post": {
				"description": "Cuts out the subject with rembg. A valid #rrggbb background_color fills the removed area; anything else leaves it transparent.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"images"
				],
				"summary": "Remove an image background",
				"parameters": [
					{
						"type": "file",
						"description": "Image",
						"name": "image",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Fill color as #rrggbb",
						"name": "background_color",
						"in": "formData"
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		},
		"/sign-pdf": {
			"post": {
				"description": "Places a signature image on one page. x_ratio and y_ratio position the top-left corner as fractions of the page measured from the top-left. At scale 1 the signature is 150 pt wide.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"text/html"
				],
				"tags": [
					"pdf"
				],
				"summary": "Sign a PDF",
				"parameters": [
					{
						"type": "file",
						"description": "PDF document",
						"name": "pdf",
						"in": "formData",
						"required": true
					},
					{
						"type": "file",
						"description": "Signature image",
						"name": "signature",
						"in": "formData",
						"required": true
					},
					{
						"type": "integer",
						"description": "Page number",
						"name": "page",
						"in": "formData",
						"default": 1
					},
					{
						"type": "number",
						"description": "Horizontal position 0-1",
						"name": "x_ratio",
						"in": "formData",
						"default": 0.5
					},
					{
						"type": "number",
						"description": "Vertical position 0-1",
						"name": "y_ratio",
						"in": "formData",
						"default": 0.8
					},
					{
						"type": "number",
						"description": "Scale factor",
						"name": "scale",
						"in": "formData",
						"default": 1
					},
					{
						"type": "integer",
						"description": "Clockwise rotation in degrees",
						"name": "rotation",
						"in": "formData",
						"default": 0
					}
				],
				"responses": {
					"200": {
						"description": "Result page",
						"schema": {
							"type": "string"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"capability.Capability": {
			"type": "object",
			"properties": {
				"available": {
					"type": "boolean"
				},
				"hint": {
					"type": "string"
				},
				"kind": {
					"type": "string"
				},
				"label": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"path": {
					"type": "string"
				}
			}
		},
		"handlers.HealthResponse": {
			"type": "object",
			"properties": {
				"capabilities": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/capability.Capability"
					}
				},
				"status": {
					"type": "string"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "go-filetools API",
	Description:      "Image, PDF, QR and document utilities behind HTML forms.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
