package feeds

import (
	"log"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/transit-aggregator/polyline"
)

// DefaultEuskotrenColor is the route-color class kept from the rail feed;
// other colors belong to services the map does not render.
const DefaultEuskotrenColor = "E60012"

// ParseEuskotrenTrips normalizes the rail trip feed. Trips outside the
// wanted route-color class are dropped. A trip whose polyline fails to
// decode is skipped with a log line so one malformed geometry cannot fail
// the whole batch.
func ParseEuskotrenTrips(payload []byte, wantColor string) ([]RailTrip, error) {
	if wantColor == "" {
		wantColor = DefaultEuskotrenColor
	}
	records, err := recordList(payload, "trips", "data")
	if err != nil {
		return nil, err
	}
	out := make([]RailTrip, 0, len(records))
	for _, rec := range records {
		color, _ := pickString(rec, "routeColor", "color")
		if !sameColor(color, wantColor) {
			continue
		}
		tripID, ok := pickString(rec, "tripId", "id", "gtfsId")
		if !ok {
			continue
		}
		geometry := [][2]float64{}
		if encoded := tripEncodedGeometry(rec); encoded != "" {
			decoded, err := polyline.Decode(encoded)
			if err != nil {
				log.Printf("euskotren: trip %s: dropping malformed geometry: %v", tripID, err)
				continue
			}
			geometry = decoded
		}
		out = append(out, RailTrip{
			TripID:     tripID,
			Geometry:   geometry,
			From:       strPtr(rec, "from", "origin"),
			To:         strPtr(rec, "to", "destination"),
			Departure:  strPtr(rec, "scheduledDeparture", "departure"),
			Arrival:    strPtr(rec, "scheduledArrival", "arrival"),
			RouteColor: strings.TrimPrefix(color, "#"),
		})
	}
	return out, nil
}

// tripEncodedGeometry finds the encoded polyline, which appears either as
// a bare string or nested OTP-style under legGeometry.points.
func tripEncodedGeometry(rec map[string]any) string {
	if s, ok := pickString(rec, "geometry", "shape", "polyline"); ok {
		return s
	}
	if leg, ok := pickMap(rec, "legGeometry", "leg_geometry"); ok {
		if s, ok := pickString(leg, "points", "encoded"); ok {
			return s
		}
	}
	return ""
}

func sameColor(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "#"), strings.TrimPrefix(b, "#"))
}

// ParseEuskotrenTripDetail normalizes the stop-level rows of one trip.
func ParseEuskotrenTripDetail(payload []byte, now time.Time) ([]StopCall, error) {
	records, err := recordList(payload, "stopTimes", "stops", "calls")
	if err != nil {
		return nil, err
	}
	out := make([]StopCall, 0, len(records))
	for _, rec := range records {
		name, ok := pickString(rec, "stopName", "name")
		if !ok {
			if stop, found := pickMap(rec, "stop"); found {
				name, ok = pickString(stop, "name", "stopName")
			}
			if !ok {
				continue
			}
		}
		call := StopCall{
			StopName:  name,
			Arrival:   strPtr(rec, "arrivalTime", "scheduledArrival"),
			Departure: strPtr(rec, "departureTime", "scheduledDeparture"),
		}
		if eta, found := pickFloat(rec, "etaMinutes", "eta"); found && finite(eta) {
			call.ETAMinutes = &eta
		} else if v, found := pickFloat(rec, "realtimeArrival", "arrival"); found && finite(v) {
			eta := relativeMinutes(v, now)
			call.ETAMinutes = &eta
		}
		out = append(out, call)
	}
	return out, nil
}
