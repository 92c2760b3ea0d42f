package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/config"
	apperrors "github.com/juancollazo-ch/evocon-changeover-service/internal/errors"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/evocon"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/logging"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/matcher"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/metrics"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/models"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/parser"
)

// ChangeoverService orquesta el pipeline del webhook:
// parse → (por estación) fetch jobs → match → post changeover.
type ChangeoverService struct {
	cfg    *config.Config
	client *evocon.Client
	parser parser.Parser
}

func NewChangeoverService(cfg *config.Config, client *evocon.Client) *ChangeoverService {
	var p parser.Parser
	switch cfg.ParseMode {
	case config.ParseModeTailSplit:
		p = parser.NewTailSplitParser()
	default:
		p = parser.NewStructuredParser(cfg.Location, cfg.StrictOrderID)
	}

	return &ChangeoverService{
		cfg:    cfg,
		client: client,
		parser: p,
	}
}

// WebhookResult es lo que se devuelve al caller del webhook. StatusCode es el
// status HTTP externo; en un post exitoso se espeja el status de Evocon.
type WebhookResult struct {
	StatusCode        int                       `json:"-"`
	Error             string                    `json:"error,omitempty"`
	StationID         int                       `json:"station_id,omitempty"`
	ProductionOrderID string                    `json:"production_order_id,omitempty"`
	PostedPayload     *models.ChangeoverPayload `json:"posted_payload,omitempty"`
	EvoconStatus      int                       `json:"evocon_status,omitempty"`
	EvoconResponse    string                    `json:"evocon_response,omitempty"`
}

// HandleWebhook procesa un webhook ya deserializado. Nunca propaga un panic:
// cualquier falla no estructurada sale como 500 con su diagnóstico.
func (s *ChangeoverService) HandleWebhook(ctx context.Context, body models.WebhookBody) (result *WebhookResult) {
	logger := zap.L().With(logging.FieldsFromContext(ctx)...)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in webhook pipeline", zap.Any("panic", r))
			metrics.WebhookRequestsTotal.WithLabelValues("internal_error").Inc()
			result = &WebhookResult{
				StatusCode: http.StatusInternalServerError,
				Error:      fmt.Sprintf("Internal server error: %v", r),
			}
		}
	}()

	// 1) Parsear el texto libre del webhook
	event, err := s.parser.Parse(body.Text)
	if err != nil {
		logger.Warn("text parse failed",
			zap.String("text", body.Text),
			zap.Error(err),
		)
		metrics.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		return &WebhookResult{
			StatusCode: apperrors.GetStatusCode(err),
			Error:      apperrors.GetDetails(err),
		}
	}

	logger = logger.With(zap.String("production_order_id", event.ProductionOrderID))
	logger.Info("webhook text parsed",
		zap.String("station_label", event.StationLabel),
		zap.Bool("has_event_time", event.HasEventTime),
	)

	// 2) Sondear estaciones en el orden configurado; gana el primer match.
	// Secuencial a propósito: correrlo concurrente haría raceado el
	// "primer match gana" sobre la prioridad configurada.
	singleStation := len(s.cfg.StationIDs) == 1
	for _, stationID := range s.cfg.StationIDs {
		jobs, err := s.client.FetchJobs(ctx, stationID)
		if err != nil {
			// Con una sola estación configurada la falla de fetch corta el
			// request con el status upstream; con fallback multi-estación
			// se loguea y se sigue con la próxima.
			if singleStation {
				logger.Error("job catalog fetch failed",
					zap.Int("station_id", stationID),
					zap.Error(err),
				)
				metrics.WebhookRequestsTotal.WithLabelValues("upstream_error").Inc()
				return &WebhookResult{
					StatusCode:        apperrors.GetStatusCode(err),
					Error:             apperrors.GetDetails(err),
					ProductionOrderID: event.ProductionOrderID,
				}
			}
			logger.Warn("job catalog fetch failed, trying next station",
				zap.Int("station_id", stationID),
				zap.Error(err),
			)
			continue
		}

		job, ok := matcher.FindMatch(jobs, event.ProductionOrderID, s.cfg.OrderIDField)
		if !ok {
			logger.Info("no matching job at station",
				zap.Int("station_id", stationID),
				zap.Int("catalog_size", len(jobs)),
			)
			continue
		}

		metrics.JobsMatchedTotal.Inc()
		logger.Info("job matched",
			zap.Int("station_id", stationID),
			zap.Any("job_id", job.ID),
		)

		// 3) Postear el changeover para el par (estación, job) matcheado.
		// Stop-at-first-hit: no se prueban más estaciones después de esto.
		return s.postChangeover(ctx, logger, stationID, job, event)
	}

	// 4) Ninguna estación tuvo la orden
	logger.Warn("no job found at any configured station",
		zap.Ints("station_ids", s.cfg.StationIDs),
	)
	metrics.WebhookRequestsTotal.WithLabelValues("not_found").Inc()
	return &WebhookResult{
		StatusCode:        http.StatusNotFound,
		Error:             "No job found for " + event.ProductionOrderID,
		ProductionOrderID: event.ProductionOrderID,
	}
}

func (s *ChangeoverService) postChangeover(
	ctx context.Context,
	logger *zap.Logger,
	stationID int,
	job models.Job,
	event parser.ParsedEvent,
) *WebhookResult {

	// Sin timestamp parseado (modo tail-split) se usa el reloj actual,
	// anclado a la misma zona civil configurada.
	eventTime := event.EventTime
	if !event.HasEventTime {
		eventTime = time.Now().In(s.cfg.Location)
	}

	payload := models.BuildChangeoverPayload(job, event.ProductionOrderID, eventTime)

	outcome, err := s.client.PostChangeover(ctx, stationID, payload)
	if err != nil {
		logger.Error("changeover post failed",
			zap.Int("station_id", stationID),
			zap.Error(err),
		)
		metrics.WebhookRequestsTotal.WithLabelValues("upstream_error").Inc()
		return &WebhookResult{
			StatusCode:        apperrors.GetStatusCode(err),
			Error:             apperrors.GetDetails(err),
			StationID:         stationID,
			ProductionOrderID: event.ProductionOrderID,
		}
	}

	metrics.ChangeoversPostedTotal.WithLabelValues(strconv.Itoa(outcome.StatusCode)).Inc()
	metrics.WebhookRequestsTotal.WithLabelValues("posted").Inc()
	logger.Info("changeover posted",
		zap.Int("station_id", stationID),
		zap.Int("evocon_status", outcome.StatusCode),
	)

	return &WebhookResult{
		StatusCode:        outcome.StatusCode,
		StationID:         stationID,
		ProductionOrderID: event.ProductionOrderID,
		PostedPayload:     &payload,
		EvoconStatus:      outcome.StatusCode,
		EvoconResponse:    outcome.Body,
	}
}
