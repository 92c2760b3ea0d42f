package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/logging"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/metrics"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/models"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/service"
)

type WebhookHandler struct {
	svc *service.ChangeoverService
}

func NewWebhookHandler(svc *service.ChangeoverService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// HandleWebhook recibe el POST del webhook, deserializa el body y delega al
// pipeline. El mapeo error→status vive en el service; acá solo se relaya.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Timeout acotado: parse + hasta N estaciones (fetch de 10s c/u) + post
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	logger := zap.L().With(logging.FieldsFromContext(ctx)...)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("error reading request body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, &service.WebhookResult{Error: "Invalid or empty JSON"})
		metrics.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		return
	}

	// El body crudo completo solo a debug, para diagnóstico post-hoc
	logger.Debug("received webhook", zap.ByteString("raw_body", raw))

	var body models.WebhookBody
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &body) != nil {
		logger.Warn("invalid webhook body", zap.Int("body_bytes", len(raw)))
		writeJSON(w, http.StatusBadRequest, &service.WebhookResult{Error: "Invalid or empty JSON"})
		metrics.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		return
	}

	result := h.svc.HandleWebhook(ctx, body)
	writeJSON(w, result.StatusCode, result)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("error encoding response", zap.Error(err))
	}
}
