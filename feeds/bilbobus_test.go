package feeds

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestParseBilbobusPositionsDropsNonFinite(t *testing.T) {
	vehicles := make([]map[string]any, 0, 10)
	for i := 0; i < 9; i++ {
		vehicles = append(vehicles, map[string]any{
			"latitude":  43.26 + float64(i)/1000,
			"longitude": -2.93,
			"line":      fmt.Sprintf("A%d", i),
		})
	}
	vehicles = append(vehicles, map[string]any{
		"latitude":  "NaN",
		"longitude": -2.93,
		"line":      "broken",
	})
	payload, _ := json.Marshal(map[string]any{"vehicles": vehicles})

	got, err := ParseBilbobusPositions(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 9 {
		t.Errorf("expected 9 normalized records out of 10, got %d", len(got))
	}
	for _, p := range got {
		if p.Source != SourceBilbobus || p.Operator != "Bilbobus" {
			t.Errorf("unexpected source tagging: %+v", p)
		}
	}
}

func TestParseBilbobusPositionsFieldVariants(t *testing.T) {
	payload := []byte(`{"buses":[
		{"lat":43.263,"long":-2.935,"route":"38","headsign":"Otxarkoaga","busId":812,"bearing":270.5}
	]}`)
	got, err := ParseBilbobusPositions(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	p := got[0]
	if p.Line == nil || *p.Line != "38" {
		t.Errorf("route variant not coalesced: %+v", p.Line)
	}
	if p.Destination == nil || *p.Destination != "Otxarkoaga" {
		t.Errorf("headsign variant not coalesced: %+v", p.Destination)
	}
	if p.VehicleID == nil || *p.VehicleID != "812" {
		t.Errorf("numeric vehicle id not normalized: %+v", p.VehicleID)
	}
	if p.Heading == nil || *p.Heading != 270.5 {
		t.Errorf("bearing variant not coalesced: %+v", p.Heading)
	}
}

func TestParseBilbobusArrivalsSortsNullsLast(t *testing.T) {
	payload := []byte(`{"arrivals":[
		{"line":"A5","etaMinutes":5},
		{"line":"A1","headsign":"no eta"},
		{"line":"A2","etaMinutes":2}
	]}`)
	got, err := ParseBilbobusArrivals(payload, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 arrivals, got %d", len(got))
	}
	if got[0].ETAMinutes == nil || *got[0].ETAMinutes != 2 {
		t.Errorf("expected ETA 2 first, got %+v", got[0].ETAMinutes)
	}
	if got[1].ETAMinutes == nil || *got[1].ETAMinutes != 5 {
		t.Errorf("expected ETA 5 second, got %+v", got[1].ETAMinutes)
	}
	if got[2].ETAMinutes != nil {
		t.Errorf("expected nil ETA last, got %v", *got[2].ETAMinutes)
	}
}

func TestBilbobusExpectedHeuristic(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   any
		wantETA float64
	}{
		{
			// 12:00:00 + 480s -> epoch seconds well above one day.
			name:    "epoch seconds",
			value:   float64(now.Unix() + 480),
			wantETA: 8,
		},
		{
			// 12:05 as seconds since midnight (below one day's worth).
			name:    "seconds since midnight",
			value:   float64(12*3600 + 5*60),
			wantETA: 5,
		},
		{
			name:    "rfc3339 string",
			value:   now.Add(3 * time.Minute).Format(time.RFC3339),
			wantETA: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, _ := json.Marshal(map[string]any{
				"arrivals": []map[string]any{{"line": "A3", "expected": tt.value}},
			})
			got, err := ParseBilbobusArrivals(payload, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 arrival, got %d", len(got))
			}
			if got[0].ETAMinutes == nil || *got[0].ETAMinutes != tt.wantETA {
				t.Errorf("expected ETA %v, got %+v", tt.wantETA, got[0].ETAMinutes)
			}
			if !got[0].IsRealtime {
				t.Error("expected realtime flag when expected value present")
			}
			if got[0].Realtime == nil {
				t.Error("expected realtimeTime to be populated")
			}
		})
	}
}

func TestParseBilbobusArrivalsMalformedRecordIsFiltered(t *testing.T) {
	payload := []byte(`{"arrivals":[
		{"line":"A3","etaMinutes":4},
		{"comment":"no route label at all"}
	]}`)
	got, err := ParseBilbobusArrivals(payload, time.Now())
	if err != nil {
		t.Fatalf("one bad record must not fail the batch: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected bad record filtered, got %d records", len(got))
	}
}
