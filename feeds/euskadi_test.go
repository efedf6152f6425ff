package feeds

import (
	"testing"
)

func TestParseEuskadiPositions(t *testing.T) {
	payload := []byte(`{
		"type": "FeatureCollection",
		"features": [
			{
				"geometry": {"type": "Point", "coordinates": [-2.9340, 43.2627]},
				"properties": {"operator": "Bizkaibus", "line": "A3515", "destination": "Getxo", "speed": 42.5, "bearing": 181}
			},
			{
				"geometry": {"type": "Point", "coordinates": [-2.9253, 43.2630]},
				"properties": {"operator": "Bilbobus", "line": "28"}
			},
			{
				"geometry": {"type": "Point", "coordinates": [-2.18]},
				"properties": {"agency": "Lurraldebus", "route": "DB01"}
			}
		]
	}`)

	got, err := ParseEuskadiPositions(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Bilbobus excluded (double-count guard), short coordinates dropped.
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	p := got[0]
	if p.Operator != "Bizkaibus" {
		t.Errorf("unexpected operator: %q", p.Operator)
	}
	// GeoJSON is [lon, lat]; canonical GPSLocation is [lat, lon].
	if p.GPSLocation[0] != 43.2627 || p.GPSLocation[1] != -2.9340 {
		t.Errorf("coordinate order not swapped: %v", p.GPSLocation)
	}
	if p.SpeedKmh == nil || *p.SpeedKmh != 42.5 {
		t.Errorf("speed not carried: %+v", p.SpeedKmh)
	}
	if p.Source != SourceEuskadi {
		t.Errorf("unexpected source: %q", p.Source)
	}
}

func TestParseEuskadiPositionsRejectsNonJSON(t *testing.T) {
	if _, err := ParseEuskadiPositions([]byte("<html>gateway error</html>")); err == nil {
		t.Error("expected error for non-JSON payload")
	}
}
