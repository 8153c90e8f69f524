/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/contracts/*      Contract and version management
  /api/versions/*       Direct version access
  /api/rates/*          Selling rate management
  /api/resolve/*        Resolution operations
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Delete("/{id}", h.DeleteContract)
			r.Get("/{id}/versions", h.ListVersions)
			r.Post("/{id}/versions", h.CreateVersion)
		})

		// Version routes
		r.Route("/versions", func(r chi.Router) {
			r.Get("/{id}", h.GetVersion)
			r.Delete("/{id}", h.DeleteVersion)
		})

		// Rate routes
		r.Route("/rates", func(r chi.Router) {
			r.Get("/", h.ListRates)
			r.Post("/", h.CreateRate)
			r.Get("/{id}", h.GetRate)
			r.Delete("/{id}", h.DeleteRate)
			r.Post("/{id}/activate", h.ActivateRate)
			r.Post("/{id}/deactivate", h.DeactivateRate)
		})

		// Resolution routes
		r.Route("/resolve", func(r chi.Router) {
			r.Post("/version", h.ResolveVersion)
			r.Post("/cancellation", h.ResolveCancellation)
			r.Post("/attrition", h.ResolveAttrition)
			r.Post("/price", h.ResolvePrice)
			r.Post("/booking-window", h.CheckBookingWindow)
			r.Post("/margin", h.ResolveMargin)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// No frontend is bundled; the root serves a minimal endpoint index.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Tariff Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Tariff Engine API</h1>
<p>Contract terms, selling rates, and resolution endpoints.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/contracts">/api/contracts</a> - List contracts</li>
<li><a href="/api/rates">/api/rates</a> - List selling rates</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List demo scenarios</li>
<li><code>POST /api/resolve/version</code> - Effective contract version</li>
<li><code>POST /api/resolve/cancellation</code> - Cancellation term and charge</li>
<li><code>POST /api/resolve/attrition</code> - Attrition allowance</li>
<li><code>POST /api/resolve/price</code> - Price a stay</li>
<li><code>POST /api/resolve/booking-window</code> - Operational-terms check</li>
<li><code>POST /api/resolve/margin</code> - Margin calculator</li>
</ul>
</body>
</html>`))
	})

	return r
}
