// HTTP handlers for the guideline corpus.
// POST /api/v1/guidelines/ingest stores a document as chunks; POST
// /api/v1/guidelines/search runs semantic retrieval over embedded chunks.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinserrat/triagent/internal/domain/guideline"
)

// GuidelineHandler handles guideline ingest and search HTTP requests.
type GuidelineHandler struct {
	ingest *guideline.IngestService
	search *guideline.SearchService
}

// NewGuidelineHandler creates a GuidelineHandler.
func NewGuidelineHandler(ingest *guideline.IngestService, search *guideline.SearchService) *GuidelineHandler {
	return &GuidelineHandler{ingest: ingest, search: search}
}

// ingestPage is a single page of an incoming document.
type ingestPage struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ingestRequest is the JSON request body for POST /api/v1/guidelines/ingest.
type ingestRequest struct {
	Source string       `json:"source"`
	Pages  []ingestPage `json:"pages"`
}

// ingestResponse is the JSON response body for POST /api/v1/guidelines/ingest.
type ingestResponse struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
}

// Ingest handles POST /api/v1/guidelines/ingest.
//
// Response codes:
//   - 202 Accepted: chunks stored; embedding happens asynchronously
//   - 400 Bad Request: invalid JSON, missing source, or no extractable text
func (h *GuidelineHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pages := make([]guideline.Page, len(req.Pages))
	for i, p := range req.Pages {
		pages[i] = guideline.Page{Number: p.Number, Text: p.Text}
	}

	chunks, err := h.ingest.Ingest(r.Context(), guideline.IngestInput{
		Source: req.Source,
		Pages:  pages,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{
		Source:     req.Source,
		ChunkCount: len(chunks),
	})
}

// sourcesResponse is the JSON response body for GET /api/v1/guidelines:
// stored chunk counts per document source.
type sourcesResponse struct {
	Sources map[string]int `json:"sources"`
}

// Sources handles GET /api/v1/guidelines.
func (h *GuidelineHandler) Sources(w http.ResponseWriter, r *http.Request) {
	counts, err := h.ingest.CountBySource(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list guideline sources")
		return
	}

	writeJSON(w, http.StatusOK, sourcesResponse{Sources: counts})
}

// searchRequest is the JSON request body for POST /api/v1/guidelines/search.
type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// searchResponse is the JSON response body for POST /api/v1/guidelines/search.
type searchResponse struct {
	Query   string              `json:"query"`
	Results []guideline.Passage `json:"results"`
}

// Search handles POST /api/v1/guidelines/search.
//
// Response codes:
//   - 200 OK: ranked passages (possibly empty)
//   - 400 Bad Request: invalid JSON or missing query
//   - 503 Service Unavailable: embedding provider unreachable
func (h *GuidelineHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.search.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, guideline.ErrSearchUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "guideline search is temporarily unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   req.Query,
		Results: results,
	})
}
