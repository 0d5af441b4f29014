package web

import (
	"encoding/json"
	"net/http"

	"murmur.town/llm"
)

type digestRequest struct {
	Texts []string `json:"texts"`
}

// handleDigest summarizes a finished session's transcripts. The client sends
// the ordered transcription texts it collected over the socket and gets back
// the combined transcript, section summaries, and an overall summary.
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	var req digestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed digest request", http.StatusBadRequest)
		return
	}
	if len(req.Texts) == 0 {
		http.Error(w, "no transcript texts", http.StatusBadRequest)
		return
	}

	digest, err := llm.BuildDigest(r.Context(), s.backends.Model, req.Texts)
	if err != nil {
		s.logger.Error("digest", "error", err)
		http.Error(w, "digest failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(digest); err != nil {
		s.logger.Error("encode digest", "error", err)
	}
}
