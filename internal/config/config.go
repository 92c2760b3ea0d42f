package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/models"
)

// ParseMode selecciona la estrategia de parseo del campo text.
type ParseMode string

const (
	ParseModeStructured ParseMode = "structured"
	ParseModeTailSplit  ParseMode = "tailsplit"
)

const (
	defaultBaseURL  = "https://api.evocon.com"
	defaultTimezone = "Europe/Tallinn"
	defaultPort     = "8080"
)

// Config es la configuración inmutable del servicio. Se carga una sola vez
// al arrancar y se inyecta por referencia; nada del request path la muta.
type Config struct {
	Tenant        string
	Secret        string
	BaseURL       string
	StationIDs    []int // orden de la lista = prioridad de sondeo
	ParseMode     ParseMode
	OrderIDField  models.OrderIDField
	TimezoneName  string
	Location      *time.Location
	StrictOrderID bool
	Port          string
}

// Load lee la configuración desde variables de entorno y falla al arrancar
// (no por request) si falta algo. Acumula todos los problemas para reportarlos
// juntos en vez de fallar con el primero.
func Load() (*Config, error) {
	var errs error

	cfg := &Config{
		Tenant:       os.Getenv("EVOCON_TENANT"),
		Secret:       os.Getenv("EVOCON_SECRET"),
		BaseURL:      strings.TrimRight(getEnv("EVOCON_BASE_URL", defaultBaseURL), "/"),
		ParseMode:    ParseMode(getEnv("PARSE_MODE", string(ParseModeStructured))),
		OrderIDField: models.OrderIDField(getEnv("ORDER_ID_FIELD", string(models.FieldProductionOrderID))),
		TimezoneName: getEnv("EVENT_TIMEZONE", defaultTimezone),
		Port:         getEnv("PORT", defaultPort),
	}

	if cfg.Tenant == "" {
		errs = multierr.Append(errs, errors.New("EVOCON_TENANT is required"))
	}
	if cfg.Secret == "" {
		errs = multierr.Append(errs, errors.New("EVOCON_SECRET is required"))
	}

	stations, err := parseStationIDs(os.Getenv("STATION_IDS"))
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	cfg.StationIDs = stations

	switch cfg.ParseMode {
	case ParseModeStructured, ParseModeTailSplit:
	default:
		errs = multierr.Append(errs, fmt.Errorf("PARSE_MODE must be %q or %q, got %q",
			ParseModeStructured, ParseModeTailSplit, cfg.ParseMode))
	}

	if !cfg.OrderIDField.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("ORDER_ID_FIELD must be one of %q, %q, %q, got %q",
			models.FieldProductionOrderID, models.FieldProductionOrder, models.FieldOrderNumber, cfg.OrderIDField))
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("EVENT_TIMEZONE %q is not a valid IANA zone: %w", cfg.TimezoneName, err))
	}
	cfg.Location = loc

	if strict := os.Getenv("STRICT_ORDER_ID"); strict != "" {
		parsed, err := strconv.ParseBool(strict)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("STRICT_ORDER_ID must be a boolean, got %q", strict))
		}
		cfg.StrictOrderID = parsed
	}

	if errs != nil {
		return nil, errs
	}
	return cfg, nil
}

// parseStationIDs parsea "2,5,7" respetando el orden: el primero de la lista
// es la primera estación sondeada.
func parseStationIDs(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("STATION_IDS is required (comma-separated station ids)")
	}

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("STATION_IDS contains invalid station id %q", part)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, errors.New("STATION_IDS is required (comma-separated station ids)")
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
