package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/sagarc03/sigv4auth/metrics"
)

// DefaultMaxBodyBytes limits the size of a validation request body.
const DefaultMaxBodyBytes = 64 << 10

// Validator is the signature validation the handler exposes.
type Validator interface {
	ValidateRequest(ctx context.Context, stringToSign, signature, accessKey string) (bool, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// Metrics enables /metrics and HTTP instrumentation when set.
	Metrics *metrics.Metrics
	// MaxBodyBytes defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// TracerProvider wraps the router with OpenTelemetry server spans when set.
	TracerProvider trace.TracerProvider
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	StringToSign string `json:"string_to_sign" validate:"required"`
	Signature    string `json:"signature" validate:"required"`
	AccessKey    string `json:"access_key" validate:"required"`
}

// ValidateResponse is returned by POST /v1/validate.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// Handler provides the HTTP API around a Validator.
type Handler struct {
	config    HandlerConfig
	validator Validator
	validate  *validator.Validate
}

// NewHandler creates a new Handler with the given configuration and validator.
func NewHandler(config *HandlerConfig, v Validator) *Handler {
	cfg := *config
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Handler{
		config:    cfg,
		validator: v,
		validate:  validator.New(),
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	r.Get("/healthz", h.handleHealth)
	r.Post("/v1/validate", h.handleValidate)

	if h.config.Metrics != nil {
		r.Handle("/metrics", h.config.Metrics.Handler())
	}

	if h.config.TracerProvider != nil {
		return otelhttp.NewHandler(r, "sigv4auth", otelhttp.WithTracerProvider(h.config.TracerProvider))
	}
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest

	body := http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		HandleError(w, fmt.Errorf("decode body: %w", ErrBadRequest))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		HandleError(w, fmt.Errorf("string_to_sign, signature and access_key are required: %w", ErrBadRequest))
		return
	}

	valid, err := h.validator.ValidateRequest(r.Context(), req.StringToSign, req.Signature, req.AccessKey)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ValidateResponse{Valid: valid})
}
