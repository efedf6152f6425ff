package feeds

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The multi-operator feed carries Bilbobus vehicles too; those come in
// through the dedicated Bilbobus feed, so they are excluded here to avoid
// rendering the same bus twice.
const euskadiExcludedOperator = "bilbobus"

type euskadiFeature struct {
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// ParseEuskadiPositions normalizes the Open Data Euskadi multi-operator
// GeoJSON feed into canonical positions.
func ParseEuskadiPositions(payload []byte) ([]VehiclePosition, error) {
	var fc struct {
		Features []euskadiFeature `json:"features"`
	}
	if err := json.Unmarshal(payload, &fc); err != nil {
		return nil, fmt.Errorf("feeds: euskadi payload: %w", err)
	}
	out := make([]VehiclePosition, 0, len(fc.Features))
	for _, f := range fc.Features {
		props := f.Properties
		if props == nil {
			continue
		}
		operator, _ := pickString(props, "operator", "agency", "company")
		if strings.Contains(strings.ToLower(operator), euskadiExcludedOperator) {
			continue
		}
		// GeoJSON geometry is [lon, lat].
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		if !finite(lat) || !finite(lon) {
			continue
		}
		if operator == "" {
			operator = "unknown"
		}
		out = append(out, VehiclePosition{
			GPSLocation: [2]float64{lat, lon},
			Operator:    operator,
			Line:        strPtr(props, "line", "route", "lineShortName"),
			Destination: strPtr(props, "destination", "headsign"),
			TripID:      strPtr(props, "tripId", "trip_id"),
			VehicleID:   strPtr(props, "vehicleId", "vehicle", "plate"),
			SpeedKmh:    floatPtr(props, "speedKmh", "speed"),
			Heading:     floatPtr(props, "bearing", "heading", "course"),
			Source:      SourceEuskadi,
			StopName:    strPtr(props, "nextStopName", "stopName"),
			StopStatus:  strPtr(props, "stopStatus", "status"),
		})
	}
	return out, nil
}
