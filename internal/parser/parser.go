package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/juancollazo-ch/evocon-changeover-service/internal/errors"
)

// timestampLayout es el formato naive que llega en el texto del webhook.
const timestampLayout = "2006-01-02 15:04:05"

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ParsedEvent es el resultado de parsear el campo text del webhook.
// Inmutable: se construye una vez por request y se descarta al terminar.
type ParsedEvent struct {
	StationLabel      string
	EventTime         time.Time
	HasEventTime      bool
	ProductionOrderID string
}

// Parser extrae un ParsedEvent del texto libre del webhook.
// Hay dos estrategias porque el formato del texto varía entre deployments.
type Parser interface {
	Parse(text string) (ParsedEvent, error)
}

// TailSplitParser corta en cada "-" y toma el último segmento no vacío como
// número de orden. Se usa cuando el texto no trae timestamp ni estación confiables.
type TailSplitParser struct{}

func NewTailSplitParser() *TailSplitParser {
	return &TailSplitParser{}
}

func (p *TailSplitParser) Parse(text string) (ParsedEvent, error) {
	segments := strings.Split(text, "-")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(segments[i])
		if segment != "" {
			return ParsedEvent{ProductionOrderID: segment}, nil
		}
	}
	return ParsedEvent{}, apperrors.ErrBadRequest("text does not contain a production order id", nil)
}

// StructuredParser espera exactamente tres segmentos separados por " - ":
// etiqueta de estación, timestamp "YYYY-MM-DD HH:MM:SS" y número de orden.
// El timestamp naive se ancla a la zona civil configurada de la planta.
type StructuredParser struct {
	loc    *time.Location
	strict bool // exige orden de producción solo-dígitos
}

func NewStructuredParser(loc *time.Location, strict bool) *StructuredParser {
	return &StructuredParser{loc: loc, strict: strict}
}

func (p *StructuredParser) Parse(text string) (ParsedEvent, error) {
	if strings.TrimSpace(text) == "" {
		return ParsedEvent{}, apperrors.ErrBadRequest("text is empty", nil)
	}

	segments := strings.Split(text, " - ")
	if len(segments) != 3 {
		return ParsedEvent{}, apperrors.ErrBadRequest(
			fmt.Sprintf("text must have format '<station> - <YYYY-MM-DD HH:MM:SS> - <orderId>', got %d segment(s)", len(segments)),
			nil,
		)
	}

	stationLabel := strings.TrimSpace(segments[0])

	eventTime, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(segments[1]), p.loc)
	if err != nil {
		return ParsedEvent{}, apperrors.ErrBadRequest("invalid timestamp in text", err)
	}

	orderID := strings.TrimSpace(segments[2])
	if orderID == "" {
		return ParsedEvent{}, apperrors.ErrBadRequest("text does not contain a production order id", nil)
	}
	if p.strict && !digitsOnly.MatchString(orderID) {
		return ParsedEvent{}, apperrors.ErrBadRequest(
			fmt.Sprintf("production order id %q must contain only digits", orderID), nil)
	}

	return ParsedEvent{
		StationLabel:      stationLabel,
		EventTime:         eventTime,
		HasEventTime:      true,
		ProductionOrderID: orderID,
	}, nil
}
