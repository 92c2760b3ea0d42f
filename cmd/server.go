package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// La zona del evento se resuelve en runtime; embebemos tzdata para
	// contenedores sin /usr/share/zoneinfo
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/config"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/evocon"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/handlers"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/logging"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/metrics"
	"github.com/juancollazo-ch/evocon-changeover-service/internal/service"
)

// Convertir niveles de Zap a severidad de GCP Cloud Logging
func zapLevelToGCPSeverity(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		enc.AppendString("CRITICAL")
	case zapcore.FatalLevel:
		enc.AppendString("EMERGENCY")
	default:
		enc.AppendString("DEFAULT")
	}
}

// MAIN: inicializa servidor, config y dependencias
func main() {
	// Inicializar Zap Logger con formato compatible con GCP Cloud Logging
	zapConfig := zap.NewProductionConfig()

	// Configurar para Cloud Logging (JSON estructurado)
	zapConfig.EncoderConfig.MessageKey = "message"
	zapConfig.EncoderConfig.LevelKey = "severity"
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeLevel = zapLevelToGCPSeverity
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Reemplazar logger global
	zap.ReplaceGlobals(logger)

	// Configuración inmutable: si falta algo, el proceso no arranca
	cfg, err := config.Load()
	if err != nil {
		zap.L().Error("Invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	zap.L().Info("Configuration loaded",
		zap.Ints("station_ids", cfg.StationIDs),
		zap.String("parse_mode", string(cfg.ParseMode)),
		zap.String("order_id_field", string(cfg.OrderIDField)),
		zap.String("timezone", cfg.TimezoneName),
	)

	metrics.Register()

	// Inicializar dependencias
	evoconClient := evocon.NewClient(cfg)
	changeoverService := service.NewChangeoverService(cfg, evoconClient)
	webhookHandler := handlers.NewWebhookHandler(changeoverService)

	// HTTP ROUTES
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/webhook", withLogging(webhookHandler.HandleWebhook))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// GRACEFUL SHUTDOWN
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		<-sigChan

		zap.L().Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Graceful shutdown failed", zap.Error(err))
		}

		zap.L().Info("Server exited")
		os.Exit(0)
	}()

	zap.L().Info("Server started", zap.String("port", cfg.Port))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.L().Error("Server stopped unexpectedly", zap.Error(err))
	}
}

// MIDDLEWARE: Logging con Trace ID compatible con GCP
func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extraer Trace ID de Cloud Run
		traceHeader := r.Header.Get("X-Cloud-Trace-Context")
		var traceID string
		if traceHeader != "" {
			// Formato: TRACE_ID/SPAN_ID;o=TRACE_TRUE
			// Solo necesitamos TRACE_ID
			if slashIdx := strings.IndexByte(traceHeader, '/'); slashIdx != -1 {
				traceID = traceHeader[:slashIdx]
			} else {
				traceID = traceHeader
			}
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		// Obtener Project ID para el formato completo de trace
		projectID := os.Getenv("GCP_PROJECT")
		if projectID == "" {
			projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}

		// Guardar traceID en contexto
		ctx := logging.WithTraceID(r.Context(), traceID)

		// Log con formato compatible con Cloud Logging
		logFields := []zap.Field{
			zap.String("httpRequest.requestMethod", r.Method),
			zap.String("httpRequest.requestUrl", r.URL.Path),
			zap.String("httpRequest.remoteIp", r.RemoteAddr),
			zap.String("httpRequest.userAgent", r.UserAgent()),
		}

		// Agregar trace en formato GCP si tenemos projectID
		if projectID != "" && traceID != "" {
			logFields = append(logFields, zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)))
		}

		zap.L().Info("Request started", logFields...)

		next(w, r.WithContext(ctx))

		duration := time.Since(start)

		completedFields := []zap.Field{
			zap.String("httpRequest.requestMethod", r.Method),
			zap.String("httpRequest.requestUrl", r.URL.Path),
			zap.Int64("httpRequest.latency.milliseconds", duration.Milliseconds()),
			zap.Float64("httpRequest.latency.seconds", duration.Seconds()),
		}

		if projectID != "" && traceID != "" {
			completedFields = append(completedFields, zap.String("logging.googleapis.com/trace", fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)))
		}

		zap.L().Info("Request completed", completedFields...)
	}
}

// HEALTH CHECK
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Service: "evocon-changeover-service",
		Version: "1.0.0",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
