package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ukbuild/material-hunter/internal/observability"
	"github.com/ukbuild/material-hunter/internal/pipeline"
	"github.com/ukbuild/material-hunter/internal/search"
	"github.com/ukbuild/material-hunter/internal/store"
)

type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Mode       string `json:"mode"`
}

// searchResponse is the envelope every search endpoint returns.
type searchResponse struct {
	Query             string            `json:"query"`
	Results           []pipeline.Record `json:"results"`
	TotalResults      int               `json:"total_results"`
	SearchTime        string            `json:"search_time"`
	SearchedSuppliers []string          `json:"searched_suppliers"`
	Source            string            `json:"source"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := pipeline.ValidateQuery(req.Query); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxResults := clampMaxResults(req.MaxResults)

	var (
		res search.Result
		err error
	)
	switch req.Mode {
	case "", "ai":
		res, err = s.service.SearchAI(r.Context(), req.Query, maxResults)
	case "live":
		res, err = s.service.SearchLive(r.Context(), req.Query, maxResults)
	default:
		respondError(w, http.StatusBadRequest, "Unknown mode: "+req.Mode)
		return
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrQueryTooShort) || errors.Is(err, pipeline.ErrEmptyContent) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Search failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		query = "50mm PIR insulation board"
	}
	maxResults := 0
	if v := r.URL.Query().Get("max_results"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			maxResults = parsed
		}
	}

	res, err := s.service.Demo(r.Context(), query, clampMaxResults(maxResults))
	if err != nil {
		if errors.Is(err, pipeline.ErrQueryTooShort) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Demo search failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	sites := s.service.Sites()
	items := make([]map[string]string, 0, len(sites))
	for _, site := range sites {
		items = append(items, map[string]string{
			"name":     site.Name,
			"url":      site.BaseURL,
			"delivery": site.Delivery,
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	searches, err := s.service.History(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch searches: "+err.Error())
		return
	}
	if searches == nil {
		searches = []store.Search{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": searches,
		"total": len(searches),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func clampMaxResults(n int) int {
	if n <= 0 {
		return pipeline.DefaultMaxResults
	}
	if n > pipeline.MaxResultsCeiling {
		return pipeline.MaxResultsCeiling
	}
	return n
}

func toResponse(res search.Result) searchResponse {
	return searchResponse{
		Query:             res.Query,
		Results:           res.Records,
		TotalResults:      len(res.Records),
		SearchTime:        fmt.Sprintf("%.2fs", res.Elapsed.Seconds()),
		SearchedSuppliers: res.Suppliers,
		Source:            res.Source,
	}
}
