package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tkingovr/borderguard/api"
	"github.com/tkingovr/borderguard/internal/loader"
	"github.com/tkingovr/borderguard/internal/reference"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"rules": s.rules})
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req api.DecideRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, ok := s.requestReference(w, req.Watchlist, req.Countries)
	if !ok {
		return
	}

	resp, err := s.runner.Run(r.Context(), req.Entries, ref, s.now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "decision batch failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "evaluation error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req api.CheckRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, ok := s.requestReference(w, req.Watchlist, req.Countries)
	if !ok {
		return
	}

	result, err := s.runner.Check(r.Context(), &req.Traveller, ref, s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "evaluation error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result.Decision())
}

var errNoReference = errors.New("no reference data loaded; include watchlist and countries in the request")

// requestReference resolves the reference data for a request and writes the
// error response when there is none. It reports whether the handler should continue.
func (s *Server) requestReference(w http.ResponseWriter, watchlist []api.WatchlistEntry, countries map[string]api.CountryPolicy) (*reference.Index, bool) {
	ref, err := s.referenceFor(watchlist, countries)
	switch {
	case errors.Is(err, errNoReference):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return ref, true
}

// referenceFor returns the server's reference data unless the request
// supplies its own watchlist or country table.
func (s *Server) referenceFor(watchlist []api.WatchlistEntry, countries map[string]api.CountryPolicy) (*reference.Index, error) {
	if watchlist == nil && countries == nil {
		if s.reference == nil {
			return nil, errNoReference
		}
		return s.reference, nil
	}
	if err := loader.ValidateCountries(countries); err != nil {
		return nil, fmt.Errorf("invalid country table: %w", err)
	}
	return reference.NewIndex(countries, watchlist, s.indexOpts...), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
