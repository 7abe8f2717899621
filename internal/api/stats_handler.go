package api

import (
	"net/http"

	"docqa/backend/internal/document"
	"docqa/backend/internal/stream"
)

// StatsHandler reports lightweight system statistics.
type StatsHandler struct {
	sessions  *stream.Manager
	documents *document.Service
}

func NewStatsHandler(sessions *stream.Manager, documents *document.Service) *StatsHandler {
	return &StatsHandler{sessions: sessions, documents: documents}
}

// StatsResponse is the payload of the stats endpoint.
type StatsResponse struct {
	TotalDocuments int `json:"total_documents"`
	ActiveSessions int `json:"active_sessions"`
}

// HandleStats godoc
// @Summary      System statistics
// @Description  Returns the number of uploaded documents and live chat sessions.
// @Tags         System
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Router       /v1/stats [get]
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, StatsResponse{
		TotalDocuments: h.documents.Count(),
		ActiveSessions: h.sessions.Count(),
	})
}
