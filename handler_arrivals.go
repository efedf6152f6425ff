package transitagg

import (
	"net/http"

	"github.com/theoremus-urban-solutions/transit-aggregator/feeds"
)

type arrivalsData struct {
	Arrivals []feeds.Arrival `json:"arrivals"`
}

type arrivalsResponse struct {
	Data  arrivalsData `json:"data"`
	Stale bool         `json:"stale,omitempty"`
}

// handleArrivals proxies per-stop arrivals. The parameter is validated
// here, before any upstream call; stale fallbacks still answer 200 so the
// UI can distinguish "old data" from "hard failure".
func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("stationCode")
	if code == "" {
		code = r.URL.Query().Get("station-code")
	}
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing stationCode parameter", "")
		return
	}

	arrivals, stale, err := s.pipeline.Arrivals(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream unavailable", err.Error())
		return
	}
	if arrivals == nil {
		arrivals = []feeds.Arrival{}
	}

	w.Header().Set("Cache-Control", "s-maxage=15, stale-while-revalidate=60")
	writeJSON(w, http.StatusOK, arrivalsResponse{
		Data:  arrivalsData{Arrivals: arrivals},
		Stale: stale,
	})
}
