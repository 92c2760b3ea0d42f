package models

import (
	"fmt"
	"math"
	"strconv"
)

// WebhookBody es el único campo que consumimos del JSON entrante.
// Los demás campos del webhook se ignoran.
type WebhookBody struct {
	Text string `json:"text"`
}

// OrderIDField identifica el campo del job de Evocon que lleva el número
// de orden de producción. El nombre varía entre deployments.
type OrderIDField string

const (
	FieldProductionOrderID OrderIDField = "productionOrderId"
	FieldProductionOrder   OrderIDField = "productionOrder"
	FieldOrderNumber       OrderIDField = "orderNumber"
)

// IsValid reporta si el nombre de campo es uno de los conocidos.
func (f OrderIDField) IsValid() bool {
	switch f {
	case FieldProductionOrderID, FieldProductionOrder, FieldOrderNumber:
		return true
	}
	return false
}

// Job es el snapshot de un job del catálogo de Evocon. Los campos de orden
// son interface{} porque Evocon los devuelve como string o número según
// el deployment.
type Job struct {
	ID                interface{} `json:"id"`
	PlannedQty        float64     `json:"plannedQty"`
	UnitQuantity      float64     `json:"unitQuantity"`
	UnitID            string      `json:"unitId"`
	ProductionOrderID interface{} `json:"productionOrderId"`
	ProductionOrder   interface{} `json:"productionOrder"`
	OrderNumber       interface{} `json:"orderNumber"`
}

// OrderField devuelve el valor del campo de orden configurado, coercionado a string.
func (j Job) OrderField(field OrderIDField) string {
	switch field {
	case FieldProductionOrder:
		return coerceString(j.ProductionOrder)
	case FieldOrderNumber:
		return coerceString(j.OrderNumber)
	default:
		return coerceString(j.ProductionOrderID)
	}
}

// coerceString convierte el valor de interface{} a string.
// Los números JSON llegan como float64; los enteros se formatean sin decimales.
func coerceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
