package server

import (
	"net/http"
)

// healthHandler reports reachability of the backing DynamoDB table.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.aws.Health(r.Context())
	status := http.StatusOK
	ok := health["status"] == "up"
	if !ok {
		status = http.StatusServiceUnavailable
	}
	s.sendJSON(w, status, ok, "health check", health)
}
