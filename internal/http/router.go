package httpapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/micro-ha/device-inventory/internal/http/handlers"
)

// Options tunes the router. Zero values select the defaults.
type Options struct {
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	// Metrics wraps every request and serves /metrics when set.
	Metrics MetricsProvider
	// Events serves the websocket change stream at /ws/devices when set.
	Events http.HandlerFunc
}

// MetricsProvider instruments requests and exposes the scrape endpoint.
type MetricsProvider interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// NewRouter builds full HTTP routing tree for the device API.
func NewRouter(api *handlers.API, opts Options) http.Handler {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(api))
	r.Use(RecoverJSON(api))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.StripSlashes)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/healthz", api.Health)
	r.Get("/docs", api.OpenAPIJSON)
	r.Get("/docs/openapi.json", api.OpenAPIJSON)
	r.Get("/docs/openapi.yaml", api.OpenAPIYAML)
	if opts.Events != nil {
		// No request timeout: the stream outlives any single request budget.
		r.Get("/ws/devices", opts.Events)
	}

	r.Group(func(devices chi.Router) {
		devices.Use(middleware.Timeout(timeout))
		devices.Get("/devices", api.ListDevices)
		devices.Post("/devices", api.CreateDevice)
		devices.Get("/devices/{name}", func(w http.ResponseWriter, r *http.Request) {
			api.GetDevice(w, r, nameParam(r))
		})
		devices.Put("/devices/{name}", func(w http.ResponseWriter, r *http.Request) {
			api.UpdateDevice(w, r, nameParam(r))
		})
		devices.Delete("/devices/{name}", func(w http.ResponseWriter, r *http.Request) {
			api.DeleteDevice(w, r, nameParam(r))
		})
		devices.Get("/devices/{name}/history", func(w http.ResponseWriter, r *http.Request) {
			api.DeviceHistory(w, r, nameParam(r))
		})
	})
	return r
}

// nameParam returns the decoded device name. chi matches on RawPath when the
// request carries one (an encoded "/" in the name), leaving the param escaped.
// Otherwise, or when StripSlashes rewrote the route path from Path, the param
// is already decoded.
func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return raw
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		return raw
	}
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}
