package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/robinvdvleuten/beanreport/report"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type SourceResponse struct {
	Filepath string   `json:"filepath"`
	Source   string   `json:"source"`
	Files    []string `json:"files"`
	Errors   []string `json:"errors"`
	Version  uint64   `json:"version"`
}

// resolveFilepath returns the filepath query parameter, defaulting to the
// main ledger file.
func (s *Server) resolveFilepath(path string) string {
	if path == "" {
		return s.report.Path()
	}
	return path
}

func (s *Server) buildResponse(filename, source string) *SourceResponse {
	errs := s.report.Errors()
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return &SourceResponse{
		Filepath: filename,
		Source:   source,
		Files:    s.report.SourceFiles(),
		Errors:   messages,
		Version:  s.report.Version(),
	}
}

// sourceError maps a Source or SetSource error to a status code.
func sourceError(w http.ResponseWriter, err error) {
	var serr *report.SourceFileError
	switch {
	case errors.As(err, &serr):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "File not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleGetSource handles GET requests to /api/source.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	filename := s.resolveFilepath(r.URL.Query().Get("filepath"))
	source, err := s.report.Source(filename)
	if err != nil {
		sourceError(w, err)
		return
	}
	writeJSONResponse(w, s.buildResponse(filename, source))
}

// handlePutSource handles PUT requests to /api/source. The ledger is
// reloaded after the write and the SSE clients are told about it.
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Filepath string `json:"filepath"`
		Source   string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	filename := s.resolveFilepath(request.Filepath)
	if err := s.report.SetSource(r.Context(), filename, request.Source); err != nil {
		sourceError(w, err)
		return
	}
	s.broadcastReload()
	writeJSONResponse(w, s.buildResponse(filename, request.Source))
}
