package parser

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

func tallinn(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Tallinn")
	if err != nil {
		t.Fatalf("Failed to load location: %v", err)
	}
	return loc
}

func TestStructuredParse_ValidText(t *testing.T) {
	p := NewStructuredParser(tallinn(t), false)

	event, err := p.Parse("Line1 - 2025-06-02 00:16:00 - 2100878")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if event.ProductionOrderID != "2100878" {
		t.Errorf("Expected order id '2100878', got '%s'", event.ProductionOrderID)
	}
	if event.StationLabel != "Line1" {
		t.Errorf("Expected station label 'Line1', got '%s'", event.StationLabel)
	}
	if !event.HasEventTime {
		t.Fatal("Expected event time to be set")
	}

	iso := event.EventTime.Format("2006-01-02T15:04:05-07:00")
	if strings.HasSuffix(iso, "Z") {
		t.Errorf("Event time must carry a numeric offset, got '%s'", iso)
	}
	// June in Tallinn is EEST (+03:00)
	if !strings.HasSuffix(iso, "+03:00") {
		t.Errorf("Expected +03:00 offset for a June timestamp, got '%s'", iso)
	}
}

func TestStructuredParse_WinterOffset(t *testing.T) {
	p := NewStructuredParser(tallinn(t), false)

	event, err := p.Parse("Line1 - 2025-01-15 08:00:00 - 2100878")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	iso := event.EventTime.Format("2006-01-02T15:04:05-07:00")
	if !strings.HasSuffix(iso, "+02:00") {
		t.Errorf("Expected +02:00 offset for a January timestamp, got '%s'", iso)
	}
}

func TestStructuredParse_Deterministic(t *testing.T) {
	p := NewStructuredParser(tallinn(t), false)

	first, err := p.Parse("Line1 - 2025-06-02 00:16:00 - 2100878")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := p.Parse("Line1 - 2025-06-02 00:16:00 - 2100878")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if first != second {
		t.Errorf("Expected identical results for identical input: %+v vs %+v", first, second)
	}
}

func TestStructuredParse_BadFormat(t *testing.T) {
	p := NewStructuredParser(tallinn(t), false)

	cases := []string{
		"",
		"   ",
		"no-dashes-here",
		"Line1 - 2025-06-02 00:16:00",
		"Line1 - not a timestamp - 2100878",
		"Line1 - 2025-06-02 00:16:00 -  ",
	}

	for _, text := range cases {
		if _, err := p.Parse(text); err == nil {
			t.Errorf("Expected parse error for %q", text)
		}
	}
}

func TestStructuredParse_StrictDigits(t *testing.T) {
	strict := NewStructuredParser(tallinn(t), true)
	lenient := NewStructuredParser(tallinn(t), false)

	text := "Line1 - 2025-06-02 00:16:00 - AB-FREE"
	// " - " split keeps "AB-FREE" intact as the third segment
	if _, err := lenient.Parse(text); err != nil {
		t.Errorf("Expected free-form order id to pass without strict mode, got %v", err)
	}
	if _, err := strict.Parse(text); err == nil {
		t.Error("Expected strict mode to reject a non-numeric order id")
	}

	if _, err := strict.Parse("Line1 - 2025-06-02 00:16:00 - 2100878"); err != nil {
		t.Errorf("Expected digits-only order id to pass strict mode, got %v", err)
	}
}

func TestTailSplitParse(t *testing.T) {
	p := NewTailSplitParser()

	event, err := p.Parse("no-dashes-here")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.ProductionOrderID != "here" {
		t.Errorf("Expected order id 'here', got '%s'", event.ProductionOrderID)
	}
	if event.HasEventTime {
		t.Error("Tail-split mode must not produce an event time")
	}

	event, err = p.Parse("Line1 - 2025-06-02 00:16:00 - 2100878")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.ProductionOrderID != "2100878" {
		t.Errorf("Expected order id '2100878', got '%s'", event.ProductionOrderID)
	}
}

func TestTailSplitParse_TrailingSeparator(t *testing.T) {
	p := NewTailSplitParser()

	event, err := p.Parse("2100878- ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event.ProductionOrderID != "2100878" {
		t.Errorf("Expected trailing empty segments to be skipped, got '%s'", event.ProductionOrderID)
	}
}

func TestTailSplitParse_Empty(t *testing.T) {
	p := NewTailSplitParser()

	for _, text := range []string{"", "  ", "---"} {
		if _, err := p.Parse(text); err == nil {
			t.Errorf("Expected parse error for %q", text)
		}
	}
}
