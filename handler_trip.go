package transitagg

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/theoremus-urban-solutions/transit-aggregator/feeds"
)

type tripDetailResponse struct {
	Data []feeds.StopCall `json:"data"`
}

// handleTripDetail serves the stop-level rows for one trip. A failed
// lookup is "no data", not an error: the body carries data: null.
func (s *Server) handleTripDetail(w http.ResponseWriter, r *http.Request) {
	tripID := mux.Vars(r)["tripID"]

	calls, err := s.pipeline.TripDetail(r.Context(), tripID)
	if err != nil {
		log.Printf("trip detail: lookup for %s failed: %v", tripID, err)
		writeJSON(w, http.StatusOK, tripDetailResponse{Data: nil})
		return
	}
	writeJSON(w, http.StatusOK, tripDetailResponse{Data: calls})
}
