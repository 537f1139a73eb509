package mw

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser calls from origins. With no origins configured only
// same-origin requests work. The credential header is allowed so the admin
// client can call privileged routes.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", CredentialHeader, "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         600,
	})
	return c.Handler
}

// CredentialHeader carries the caller's catalog credential.
const CredentialHeader = "X-Catalog-Credential"
