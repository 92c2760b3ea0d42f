package evocon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/auth"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/config"
	apperrors "github.com/juancollazo-ch/evocon-changeover-service/internal/errors"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/metrics"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/models"
)

// PostOutcome es la respuesta cruda de Evocon al POST de changeover.
// El cliente no interpreta errores de negocio upstream: relaya status y body
// tal cual al caller.
type PostOutcome struct {
	StatusCode int
	Body       string
}

// Client habla con la API de Evocon. Un intento por llamada, sin reintentos;
// el circuit breaker corta rápido cuando Evocon viene fallando seguido,
// en vez de comerse el timeout completo por estación en cada request.
type Client struct {
	http       *http.Client
	base       string
	authHeader string
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(cfg *config.Config) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "evocon",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		base:       cfg.BaseURL,
		authHeader: "Basic " + auth.BasicHeader(cfg.Tenant, cfg.Secret),
		breaker:    breaker,
	}
}

// FetchJobs trae el catálogo de jobs de una estación. Sin caché local:
// el catálogo puede cambiar entre requests, así que se consulta fresco
// por request por estación.
func (c *Client) FetchJobs(ctx context.Context, stationID int) ([]models.Job, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchJobs(ctx, stationID)
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("fetch_jobs").Inc()
		return nil, breakerError(err, "fetching jobs")
	}
	return result.([]models.Job), nil
}

func (c *Client) fetchJobs(ctx context.Context, stationID int) ([]models.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/jobs", nil)
	if err != nil {
		return nil, apperrors.ErrInternalServer("error building jobs request", err)
	}
	req.URL.RawQuery = fmt.Sprintf("stationId=%d", stationID)
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.ErrUpstream(0, "evocon unreachable", err).
			WithMetadata("station_id", stationID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ErrUpstream(0, "error reading evocon response", err).
			WithMetadata("station_id", stationID)
	}

	// Un status no-2xx nunca se trata como catálogo vacío
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.ErrUpstream(resp.StatusCode,
			fmt.Sprintf("evocon jobs returned status %d", resp.StatusCode), nil).
			WithMetadata("station_id", stationID).
			WithMetadata("upstream_body", string(body))
	}

	var jobs []models.Job
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, apperrors.ErrUpstream(0, "evocon jobs response is not a JSON array", err).
			WithMetadata("station_id", stationID)
	}
	return jobs, nil
}

// PostChangeover envía el evento de changeover para una estación y devuelve
// status y body de Evocon tal cual, éxito o no. Solo una falla de transporte
// (no llegó respuesta) se reporta como error.
func (c *Client) PostChangeover(ctx context.Context, stationID int, payload models.ChangeoverPayload) (PostOutcome, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.postChangeover(ctx, stationID, payload)
	})
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("post_changeover").Inc()
		return PostOutcome{}, breakerError(err, "posting changeover")
	}
	return result.(PostOutcome), nil
}

func (c *Client) postChangeover(ctx context.Context, stationID int, payload models.ChangeoverPayload) (PostOutcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return PostOutcome{}, apperrors.ErrInternalServer("error marshaling changeover payload", err)
	}

	url := fmt.Sprintf("%s/api/batches/%d", c.base, stationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return PostOutcome{}, apperrors.ErrInternalServer("error building changeover request", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return PostOutcome{}, apperrors.ErrUpstream(0, "evocon unreachable", err).
			WithMetadata("station_id", stationID)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return PostOutcome{}, apperrors.ErrUpstream(0, "error reading evocon response", err).
			WithMetadata("station_id", stationID)
	}

	return PostOutcome{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}

// breakerError traduce los errores propios de gobreaker a AppError upstream.
func breakerError(err error, op string) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.ErrUpstream(0, "evocon circuit open while "+op, err)
	}
	return err
}
