package openapi

import (
	"encoding/json"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/travelingorcas/orcalog/config"
	"gopkg.in/yaml.v3"
)

// Document describes the public auth API surface.
type Document struct {
	spec *openapi3.T
}

func NewDocument(cfg *config.Config) *Document {
	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       cfg.App.Name + " API",
			Version:     "1.0.0",
			Description: "Passwordless email-code authentication for " + cfg.App.Name + ".",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: cfg.App.URL},
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				"sessionCookie": &openapi3.SecuritySchemeRef{
					Value: &openapi3.SecurityScheme{
						Type:        "apiKey",
						Name:        cfg.Auth.CookieName,
						In:          "cookie",
						Description: "Session cookie issued by verify-code.",
					},
				},
			},
			Schemas: openapi3.Schemas{
				"Session": sessionSchema(),
			},
		},
	}

	spec.Paths.Set("/api/auth/request-code", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "requestCode",
			Summary:     "Request a one-time login code",
			Description: "Issues a 6-digit code and emails it to the address. Any earlier code for the address is invalidated.",
			Tags:        []string{"auth"},
			RequestBody: jsonBody(objectSchema(map[string]*openapi3.SchemaRef{
				"email": stringSchema("email"),
			}, "email")),
			Responses: responses(map[string]*openapi3.Response{
				"200": jsonResponse("Code issued and dispatched", objectSchema(map[string]*openapi3.SchemaRef{
					"message": stringSchema(""),
					"code":    stringSchema(""),
				}, "message")),
				"400": errorResponse("Missing or malformed email"),
				"403": errorResponse("Email domain not allowed"),
				"429": errorResponse("Too many requests"),
			}),
		},
	})

	spec.Paths.Set("/api/auth/verify-code", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "verifyCode",
			Summary:     "Exchange a one-time code for a session",
			Description: "Verifies the code for the address and, on success, creates a session and sets the session cookie. A code verifies at most once.",
			Tags:        []string{"auth"},
			RequestBody: jsonBody(objectSchema(map[string]*openapi3.SchemaRef{
				"email": stringSchema("email"),
				"code":  stringSchema(""),
			}, "email", "code")),
			Responses: responses(map[string]*openapi3.Response{
				"200": jsonResponse("Session created", objectSchema(map[string]*openapi3.SchemaRef{
					"message": stringSchema(""),
					"session": schemaRef("Session"),
				}, "message", "session")),
				"400": errorResponse("Invalid or expired code"),
				"429": errorResponse("Too many requests"),
			}),
		},
	})

	spec.Paths.Set("/api/auth/logout", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "logout",
			Summary:     "End the current session",
			Description: "Deletes the session named by the cookie and clears the cookie. Always succeeds.",
			Tags:        []string{"auth"},
			Responses: responses(map[string]*openapi3.Response{
				"200": jsonResponse("Logged out", objectSchema(map[string]*openapi3.SchemaRef{
					"message": stringSchema(""),
				}, "message")),
			}),
		},
	})

	spec.Paths.Set("/api/auth/session", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "currentSession",
			Summary:     "Inspect the current session",
			Tags:        []string{"auth"},
			Security:    openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate("sessionCookie")),
			Responses: responses(map[string]*openapi3.Response{
				"200": jsonResponse("Current session", objectSchema(map[string]*openapi3.SchemaRef{
					"session": schemaRef("Session"),
				}, "session")),
				"401": errorResponse("No live session"),
			}),
		},
	})

	spec.Paths.Set("/healthz", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "health",
			Summary:     "Liveness probe",
			Tags:        []string{"ops"},
			Responses: responses(map[string]*openapi3.Response{
				"200": jsonResponse("Service is up", objectSchema(map[string]*openapi3.SchemaRef{
					"status": stringSchema(""),
				}, "status")),
			}),
		},
	})

	return &Document{spec: spec}
}

func (d *Document) Spec() *openapi3.T {
	return d.spec
}

func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d.spec, "", "  ")
}

func (d *Document) YAML() ([]byte, error) {
	intermediate, err := d.spec.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

func sessionSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"id":        stringSchema("uuid"),
		"email":     stringSchema("email"),
		"expiresAt": stringSchema("date-time"),
	}, "id", "email", "expiresAt")
}

func stringSchema(format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: format},
	}
}

func schemaRef(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func objectSchema(properties map[string]*openapi3.SchemaRef, required ...string) *openapi3.SchemaRef {
	props := make(openapi3.Schemas, len(properties))
	for name, schema := range properties {
		props[name] = schema
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
			Required:   required,
		},
	}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{Schema: schema},
			},
		},
	}
}

func jsonResponse(description string, schema *openapi3.SchemaRef) *openapi3.Response {
	return &openapi3.Response{
		Description: &description,
		Content: openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: schema},
		},
	}
}

func errorResponse(description string) *openapi3.Response {
	return jsonResponse(description, objectSchema(map[string]*openapi3.SchemaRef{
		"error": stringSchema(""),
	}, "error"))
}

func responses(byStatus map[string]*openapi3.Response) *openapi3.Responses {
	out := openapi3.NewResponses()
	for status, resp := range byStatus {
		out.Set(status, &openapi3.ResponseRef{Value: resp})
	}
	return out
}
