package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/eugenenazirov/lambda-settings/internal/settings"
	"github.com/eugenenazirov/lambda-settings/internal/version"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler exposes resolved settings over HTTP. Responses are built from the
// redacted dump only.
type Handler struct {
	settings *settings.Settings

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler around resolved settings.
func NewHandler(s *settings.Settings, opts ...HandlerOption) *Handler {
	h := &Handler{
		settings: s,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Version:   version.Semantic(),
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, settingsResponse{Info: h.settings.Dump()})
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	field, ok := h.settings.Field(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown setting", name+" is not a declared setting")
		return
	}

	resp := settingResponse{
		Name:     field.Name,
		Category: field.Category,
		Kind:     field.Kind.String(),
		Secret:   field.Secret,
		Source:   h.settings.Source(name).String(),
	}
	if !field.Secret {
		resp.Value, _ = h.settings.Get(name)
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type settingsResponse struct {
	Info map[string]any `json:"info"`
}

type settingResponse struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
	Secret   bool   `json:"secret"`
	Source   string `json:"source"`
	Value    any    `json:"value,omitempty"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}
