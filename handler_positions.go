package transitagg

import "net/http"

type positionsResponse struct {
	Data PositionsResult `json:"data"`
}

// handlePositions serves the combined live snapshot. Sources that failed
// this cycle are simply absent; the caller keeps rendering its previous
// set until the next poll.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	result := s.pipeline.CombinedPositions(r.Context())
	writeJSON(w, http.StatusOK, positionsResponse{Data: result})
}
