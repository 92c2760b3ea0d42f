package matcher

import (
	"testing"

	"github.com/juancollazo-ch/evocon-changeover-service/internal/models"
)

func TestFindMatch_ExactMatch(t *testing.T) {
	jobs := []models.Job{
		{ID: float64(1), ProductionOrderID: "1000"},
		{ID: float64(2), ProductionOrderID: "2100878"},
	}

	job, ok := FindMatch(jobs, "2100878", models.FieldProductionOrderID)
	if !ok {
		t.Fatal("Expected a match")
	}
	if job.ID != float64(2) {
		t.Errorf("Expected job 2, got %v", job.ID)
	}
}

func TestFindMatch_FirstWins(t *testing.T) {
	// Duplicados upstream no son error: gana el primero en orden de catálogo
	jobs := []models.Job{
		{ID: float64(10), ProductionOrderID: "2100878", UnitID: "pcs"},
		{ID: float64(20), ProductionOrderID: "2100878", UnitID: "box"},
	}

	job, ok := FindMatch(jobs, "2100878", models.FieldProductionOrderID)
	if !ok {
		t.Fatal("Expected a match")
	}
	if job.ID != float64(10) {
		t.Errorf("Expected the first catalog entry to win, got job %v", job.ID)
	}
}

func TestFindMatch_NumericField(t *testing.T) {
	jobs := []models.Job{
		{ID: float64(1), OrderNumber: float64(2100878)},
	}

	if _, ok := FindMatch(jobs, "2100878", models.FieldOrderNumber); !ok {
		t.Error("Expected numeric order field to match after string coercion")
	}
}

func TestFindMatch_ConfiguredField(t *testing.T) {
	jobs := []models.Job{
		{ID: float64(1), ProductionOrder: "2100878"},
	}

	if _, ok := FindMatch(jobs, "2100878", models.FieldProductionOrderID); ok {
		t.Error("Expected no match when the configured field is empty")
	}
	if _, ok := FindMatch(jobs, "2100878", models.FieldProductionOrder); !ok {
		t.Error("Expected a match on the configured field")
	}
}

func TestFindMatch_NoMatch(t *testing.T) {
	jobs := []models.Job{
		{ID: float64(1), ProductionOrderID: "1000"},
	}

	if _, ok := FindMatch(jobs, "9999", models.FieldProductionOrderID); ok {
		t.Error("Expected no match")
	}
	if _, ok := FindMatch(nil, "9999", models.FieldProductionOrderID); ok {
		t.Error("Expected no match on an empty catalog")
	}
	if _, ok := FindMatch(jobs, "", models.FieldProductionOrderID); ok {
		t.Error("Expected no match for an empty order id")
	}
}
