package feeds

import "sort"

// Source identifies which upstream produced a canonical record.
type Source string

const (
	SourceBilbobus  Source = "bilbobus"
	SourceEuskadi   Source = "euskadi"
	SourceEuskotren Source = "euskotren"
)

// VehiclePosition is the unified live-position record. GPSLocation is
// [lat, lon]; adapters guarantee both components are finite.
type VehiclePosition struct {
	GPSLocation [2]float64 `json:"gpsLocation"`
	Operator    string     `json:"operatorName"`
	Line        *string    `json:"lineLabel"`
	Destination *string    `json:"lineDestination"`
	TripID      *string    `json:"tripId"`
	VehicleID   *string    `json:"vehicleId"`
	SpeedKmh    *float64   `json:"speedKmh"`
	Heading     *float64   `json:"heading"`
	Source      Source     `json:"sourceSystem"`
	StopName    *string    `json:"currentOrNextStopName"`
	StopStatus  *string    `json:"stopStatus"`
}

// Arrival is one predicted or scheduled arrival at a stop.
type Arrival struct {
	ETAMinutes  *float64 `json:"etaMinutes"`
	Route       string   `json:"routeLabel"`
	Headsign    *string  `json:"tripHeadsign"`
	TripID      *string  `json:"tripId"`
	RouteID     *string  `json:"routeId"`
	VehicleID   *string  `json:"vehicleId"`
	Origin      *string  `json:"originStopName"`
	Destination *string  `json:"destinationStopName"`
	Scheduled   *string  `json:"scheduledTime"`
	Realtime    *string  `json:"realtimeTime"`
	DelaySec    *int     `json:"delaySeconds"`
	IsRealtime  bool     `json:"isRealtime"`
}

// RailTrip is one Euskotren trip inside the queried window, with its
// decoded geometry in traversal order.
type RailTrip struct {
	TripID     string       `json:"tripId"`
	Geometry   [][2]float64 `json:"geometry"`
	From       *string      `json:"from"`
	To         *string      `json:"to"`
	Departure  *string      `json:"scheduledDeparture"`
	Arrival    *string      `json:"scheduledArrival"`
	RouteColor string       `json:"routeColor"`
}

// StopCall is one stop-level row of a trip detail lookup.
type StopCall struct {
	StopName   string   `json:"stopName"`
	ETAMinutes *float64 `json:"etaMinutes"`
	Arrival    *string  `json:"arrivalTime"`
	Departure  *string  `json:"departureTime"`
}

// SortArrivals orders arrivals ascending by ETA with unknown ETAs last.
// The sort is stable so equal ETAs keep upstream order.
func SortArrivals(arrivals []Arrival) {
	sort.SliceStable(arrivals, func(i, j int) bool {
		a, b := arrivals[i].ETAMinutes, arrivals[j].ETAMinutes
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}
