package models

import "time"

// ISOOffsetLayout renderiza timestamps ISO-8601 con offset UTC numérico explícito.
// Nunca "Z": Evocon interpreta el evento en hora civil de la planta.
const ISOOffsetLayout = "2006-01-02T15:04:05-07:00"

// ChangeoverPayload es el body del POST de cambio de lote hacia Evocon.
type ChangeoverPayload struct {
	JobID      interface{} `json:"jobId"`
	PlannedQty float64     `json:"plannedQty"`
	UnitQty    float64     `json:"unitQty"`
	Notes      string      `json:"notes"`
	UnitID     string      `json:"unitId"`
	EventTime  string      `json:"eventTime"`
	LotCode    string      `json:"lotCode"`
}

// BuildChangeoverPayload arma el payload del changeover a partir del job
// matcheado y la orden extraída del texto. eventTime ya debe venir anclado
// a la zona horaria configurada.
func BuildChangeoverPayload(job Job, productionOrderID string, eventTime time.Time) ChangeoverPayload {
	unitQty := job.UnitQuantity
	if unitQty == 0 {
		unitQty = 1
	}

	unitID := job.UnitID
	if unitID == "" {
		unitID = "pcs"
	}

	return ChangeoverPayload{
		JobID:      job.ID,
		PlannedQty: job.PlannedQty,
		UnitQty:    unitQty,
		Notes:      "Auto CO for " + productionOrderID,
		UnitID:     unitID,
		EventTime:  eventTime.Format(ISOOffsetLayout),
		LotCode:    "CO-" + productionOrderID,
	}
}
