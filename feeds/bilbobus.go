package feeds

import (
	"math"
	"time"
)

const bilbobusOperator = "Bilbobus"

// ParseBilbobusPositions normalizes the Bilbobus live-vehicle payload.
// Records without finite coordinates are dropped, never propagated.
func ParseBilbobusPositions(payload []byte) ([]VehiclePosition, error) {
	records, err := recordList(payload, "vehicles", "buses", "data")
	if err != nil {
		return nil, err
	}
	out := make([]VehiclePosition, 0, len(records))
	for _, rec := range records {
		lat, latOK := pickFloat(rec, "latitude", "lat")
		lon, lonOK := pickFloat(rec, "longitude", "lon", "long")
		if !latOK || !lonOK || !finite(lat) || !finite(lon) {
			continue
		}
		out = append(out, VehiclePosition{
			GPSLocation: [2]float64{lat, lon},
			Operator:    bilbobusOperator,
			Line:        strPtr(rec, "line", "lineId", "route"),
			Destination: strPtr(rec, "destination", "headsign"),
			TripID:      strPtr(rec, "tripId", "trip_id"),
			VehicleID:   strPtr(rec, "vehicleId", "vehicle_id", "busId"),
			SpeedKmh:    floatPtr(rec, "speedKmh", "speed"),
			Heading:     floatPtr(rec, "heading", "bearing", "course"),
			Source:      SourceBilbobus,
			StopName:    strPtr(rec, "nextStop", "currentStop", "stopName"),
			StopStatus:  strPtr(rec, "stopStatus", "status"),
		})
	}
	return out, nil
}

// ParseBilbobusArrivals normalizes the per-stop arrival payload and sorts
// the result ascending by ETA, unknown ETAs last.
func ParseBilbobusArrivals(payload []byte, now time.Time) ([]Arrival, error) {
	records, err := recordList(payload, "arrivals", "stopTimes", "data")
	if err != nil {
		return nil, err
	}
	out := make([]Arrival, 0, len(records))
	for _, rec := range records {
		route, ok := pickString(rec, "route", "line", "routeShortName")
		if !ok {
			// A row without any route label renders as nothing useful.
			continue
		}
		a := Arrival{
			Route:       route,
			Headsign:    strPtr(rec, "headsign", "tripHeadsign", "destination"),
			TripID:      strPtr(rec, "tripId", "trip_id"),
			RouteID:     strPtr(rec, "routeId", "route_id"),
			VehicleID:   strPtr(rec, "vehicleId", "vehicle_id"),
			Origin:      strPtr(rec, "origin", "originStop"),
			Destination: strPtr(rec, "destination", "destinationStop"),
			Scheduled:   strPtr(rec, "scheduledTime", "scheduled", "aimedArrival"),
		}
		if delay, ok := pickFloat(rec, "delaySeconds", "delay"); ok && finite(delay) {
			d := int(delay)
			a.DelaySec = &d
		}
		a.ETAMinutes, a.Realtime, a.IsRealtime = bilbobusExpected(rec, now)
		if a.ETAMinutes == nil {
			if eta, ok := pickFloat(rec, "etaMinutes", "minutes"); ok && finite(eta) {
				a.ETAMinutes = &eta
			}
		}
		if realtime, ok := pickBool(rec, "isRealtime", "realtime"); ok {
			a.IsRealtime = realtime
		}
		out = append(out, a)
	}
	SortArrivals(out)
	return out, nil
}

// bilbobusExpected reads the realtime expected-arrival field, which the
// upstream publishes either as a timestamp string or as a bare number that
// is epoch seconds or seconds-since-midnight (see relativeMinutes).
func bilbobusExpected(rec map[string]any, now time.Time) (*float64, *string, bool) {
	for _, key := range []string{"expected", "realtime", "estimated"} {
		switch v := rec[key].(type) {
		case float64:
			if !finite(v) {
				continue
			}
			eta := relativeMinutes(v, now)
			abs := absoluteTime(v, now)
			return &eta, &abs, true
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				continue
			}
			eta := math.Round(t.Sub(now).Minutes())
			abs := t.UTC().Format(time.RFC3339)
			return &eta, &abs, true
		}
	}
	return nil, nil, false
}
