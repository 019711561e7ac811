package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"launchline/internal/metrics"
	launchsdk "launchline/sdk/go"
)

// Launches is the read side of the SDK the gateway serves from.
type Launches interface {
	UpcomingLaunches(ctx context.Context, f launchsdk.LaunchFilter) ([]launchsdk.LaunchEvent, error)
	NextLaunch(ctx context.Context) (launchsdk.LaunchEvent, error)
}

// Config for the HTTP API handler.
type Config struct {
	Launches Launches
	BasePath string
	Auth     AuthConfig
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"upstream_unavailable"`
	Message string         `json:"message" example:"launch library is unreachable"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the launch gateway.
func New(cfg Config) (http.Handler, error) {
	if cfg.Launches == nil {
		return nil, errors.New("launches source required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			// Query parameter validation failures are plain bad requests here.
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	// Rejected credentials are logged by the auth middleware itself.
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	router.Use(newLogMiddleware(logger))
	hcfg := huma.DefaultConfig("Launchline API", "1.0.0")
	hcfg.OpenAPIPath = ""
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerLaunches(group, cfg.Launches)
	registerOpenAPI(router, api, basePath, cfg.Auth.enabled())
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}
	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, launchsdk.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	var te *launchsdk.TransportError
	if errors.As(err, &te) {
		if te.StatusCode == http.StatusNotFound {
			return newAPIError(http.StatusNotFound, "not_found", "no matching launches upstream", nil)
		}
		return newAPIError(http.StatusBadGateway, "upstream_unavailable", "launch library request failed", map[string]any{"url": te.URL, "status": te.StatusCode})
	}
	var mre *launchsdk.MalformedResponseError
	if errors.As(err, &mre) {
		return newAPIError(http.StatusBadGateway, "upstream_malformed", err.Error(), map[string]any{"path": mre.Path})
	}
	var ure *launchsdk.UnsupportedReferenceError
	if errors.As(err, &ure) {
		return newAPIError(http.StatusBadGateway, "upstream_malformed", err.Error(), map[string]any{"ref": ure.Ref})
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newAPIError(http.StatusGatewayTimeout, "timeout", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadGateway:
		return "upstream_unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(launchsdk.ContextWithRequestID(r.Context(), id)))
	})
}

func newLogMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			id, _ := launchsdk.RequestIDFromContext(r.Context())
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", id,
			}
			if p, ok := principalFromContext(r.Context()); ok {
				attrs = append(attrs, "subject", p.Subject)
			}
			logger.InfoContext(r.Context(), "request", attrs...)
		})
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get(path.Join(basePath, "docs"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string, secured bool) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			if secured {
				applyAuthSecurity(oas, basePath)
			}
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	healthPath := path.Join("/", basePath, "health")
	for route, item := range oas.Paths {
		if item.Get == nil {
			continue
		}
		if route == healthPath {
			item.Get.Security = []map[string][]string{}
			continue
		}
		item.Get.Security = security
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Launchline API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerLaunches(api huma.API, l Launches) {
	huma.Register(api, huma.Operation{
		OperationID: "list-launches",
		Method:      http.MethodGet,
		Path:        "/launches",
		Summary:     "List upcoming launches",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, input *LaunchQuery) (*LaunchListResponse, error) {
		launches, err := l.UpcomingLaunches(ctx, input.Filter())
		if err != nil {
			return nil, handleError(err)
		}
		if launches == nil {
			launches = []launchsdk.LaunchEvent{}
		}
		return &LaunchListResponse{Body: launches}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "next-launch",
		Method:      http.MethodGet,
		Path:        "/launches/next",
		Summary:     "Next upcoming launch",
		Errors:      []int{http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, _ *struct{}) (*LaunchResponse, error) {
		ev, err := l.NextLaunch(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &LaunchResponse{Body: ev}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-launch",
		Method:      http.MethodGet,
		Path:        "/launches/{id}",
		Summary:     "Launch by id",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, input *LaunchPath) (*LaunchResponse, error) {
		launches, err := l.UpcomingLaunches(ctx, launchsdk.LaunchFilter{ID: launchsdk.Int(input.ID)})
		if err != nil {
			return nil, handleError(err)
		}
		if len(launches) == 0 {
			return nil, newAPIError(http.StatusNotFound, "not_found", fmt.Sprintf("launch %d not found", input.ID), nil)
		}
		return &LaunchResponse{Body: launches[0]}, nil
	})
}
