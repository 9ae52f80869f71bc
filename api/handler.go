// Package api exposes the inbound webhook HTTP surface of the bridge.
package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/sweatstack/bridge"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Pike13-Signature"

// Handler is the HTTP front of the bridge pipeline.
type Handler struct {
	bridge *bridge.Bridge
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler creates the webhook handler.
func NewHandler(b *bridge.Bridge, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		bridge: b,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	h.mux.HandleFunc("POST /webhook/pike13", h.handleWebhook)
	h.mux.HandleFunc("GET /healthz", h.handleHealthz)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.panicRecovery(h.mux).ServeHTTP(w, r)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable request body"})
		return
	}

	res := h.bridge.Process(r.Context(), bridge.Request{
		Body:      body,
		Signature: r.Header.Get(SignatureHeader),
	})

	switch res.Status {
	case bridge.StatusRejected, bridge.StatusErrored:
		h.writeJSON(w, res.Status.HTTPStatus(), map[string]any{"error": res.Message})
	default:
		h.writeJSON(w, res.Status.HTTPStatus(), map[string]any{
			"message": res.Message,
			"topic":   res.Topic,
		})
	}
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response failed", "error", err)
	}
}

func (h *Handler) panicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic in handler",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				h.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
