package handlers

import (
	"html/template"
	"net/http"
	"regexp"
)

// Documentation endpoints.
const (
	DocsPath    = "/api/docs"
	OpenAPIPath = "/api/docs/openapi.json"
)

var pathParam = regexp.MustCompile(`\{([a-z]+)\}`)

var paramDescriptions = map[string]map[string]interface{}{
	ParamMetric:   {"description": "Record field to aggregate, for example ASM or OP_REVENUES", "required": true, "schema": map[string]string{"type": "string"}},
	ParamRegion:   {"description": "Region code (A, L, D, I, P), region name or All", "schema": map[string]interface{}{"type": "string", "default": "All"}},
	ParamYear:     {"description": "Four digit year or All", "schema": map[string]interface{}{"type": "string", "default": "All"}},
	ParamQuarter:  {"description": "Quarter 1-4 or All", "schema": map[string]interface{}{"type": "string", "default": "All"}},
	ParamCategory: {"description": "Aircraft categorization or All", "schema": map[string]interface{}{"type": "string", "default": "All"}},
	ParamRange:    {"description": "Chart range", "schema": map[string]interface{}{"type": "string", "enum": []string{"1Y", "3Y", "5Y", "Max"}, "default": "1Y"}},
}

var pathDescriptions = map[string]string{
	"id":      "Airline id, for example delta-airlines",
	"expense": "Expense category: crew, fuel-oil, maintenance, materials or depreciation",
}

// OpenAPISpec returns the OpenAPI 3.0 document generated from the registered routes
func (h *AnalyticsHandler) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, h.openAPIDocument(), http.StatusOK)
}

func (h *AnalyticsHandler) openAPIDocument() map[string]interface{} {
	errorResponse := map[string]interface{}{
		"description": "Error",
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}

	paths := map[string]interface{}{}
	for _, rt := range h.routes() {
		var params []map[string]interface{}
		for _, m := range pathParam.FindAllStringSubmatch(rt.path, -1) {
			params = append(params, map[string]interface{}{
				"name":        m[1],
				"in":          "path",
				"required":    true,
				"description": pathDescriptions[m[1]],
				"schema":      map[string]string{"type": "string"},
			})
		}
		for _, name := range rt.params {
			p := map[string]interface{}{"name": name, "in": "query", "required": false}
			for k, v := range paramDescriptions[name] {
				p[k] = v
			}
			params = append(params, p)
		}

		op := map[string]interface{}{
			"summary": rt.summary,
			"tags":    []string{rt.tag},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "Successful response",
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": map[string]string{"type": "object"},
						},
					},
				},
				"400": errorResponse,
				"404": errorResponse,
				"500": errorResponse,
			},
		}
		if len(params) > 0 {
			op["parameters"] = params
		}
		paths[rt.path] = map[string]interface{}{"get": op}
	}

	paths["/health"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary": "Health check",
			"responses": map[string]interface{}{
				"200": map[string]interface{}{"description": "API and database are healthy"},
				"503": map[string]interface{}{"description": "Database unreachable"},
			},
		},
	}
	paths["/metrics"] = map[string]interface{}{
		"get": map[string]interface{}{
			"summary": "Prometheus metrics",
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "Prometheus metrics in text format",
					"content": map[string]interface{}{
						"text/plain": map[string]interface{}{
							"schema": map[string]string{"type": "string"},
						},
					},
				},
			},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Airline Analytics API",
			"description": "Traffic, operating, financial and stock analytics for U.S. carriers",
			"version":     h.version,
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":      map[string]string{"type": "string"},
						"message":    map[string]string{"type": "string"},
						"code":       map[string]string{"type": "integer"},
						"request_id": map[string]string{"type": "string"},
					},
				},
			},
		},
	}
}

var swaggerTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis]
            });
        };
    </script>
</body>
</html>`))

// SwaggerUI serves the Swagger UI page for the generated document
func (h *AnalyticsHandler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title   string
		SpecURL string
	}{
		Title:   "Airline Analytics API Documentation",
		SpecURL: OpenAPIPath,
	}
	if err := swaggerTemplate.Execute(w, data); err != nil {
		http.Error(w, "failed to render docs", http.StatusInternalServerError)
	}
}
