package dispatch

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig returns a permissive CORS config for development
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}

// CORS is middleware adding CORS headers to responses. Preflight requests
// (OPTIONS with Access-Control-Request-Method) are answered directly with
// 204 No Content.
type CORS struct {
	Config CORSConfig
}

// NewCORS creates CORS middleware.
func NewCORS(cfg CORSConfig) *CORS {
	return &CORS{Config: cfg}
}

// Process implements Middleware.
func (c *CORS) Process(ctx context.Context, r Request, next Handler) (Response, error) {
	if r.Method() == http.MethodOptions && r.Header("Access-Control-Request-Method") != "" {
		return c.decorate(r, NewResponse(http.StatusNoContent)), nil
	}

	resp, err := next.Handle(ctx, r)
	if err != nil {
		return resp, err
	}
	return c.decorate(r, resp), nil
}

func (c *CORS) decorate(r Request, resp Response) Response {
	cfg := c.Config

	origin := r.Header("Origin")
	if slices.Contains(cfg.AllowedOrigins, "*") {
		resp = resp.WithHeader("Access-Control-Allow-Origin", "*")
	} else if origin != "" && slices.Contains(cfg.AllowedOrigins, origin) {
		resp = resp.WithHeader("Access-Control-Allow-Origin", origin).
			WithAddedHeader("Vary", "Origin")
	}

	if len(cfg.AllowedMethods) > 0 {
		resp = resp.WithHeader("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
	}
	if len(cfg.AllowedHeaders) > 0 {
		resp = resp.WithHeader("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
	}
	if len(cfg.ExposedHeaders) > 0 {
		resp = resp.WithHeader("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ", "))
	}
	if cfg.AllowCredentials {
		resp = resp.WithHeader("Access-Control-Allow-Credentials", "true")
	}
	if cfg.MaxAge > 0 {
		resp = resp.WithHeader("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
	return resp
}
