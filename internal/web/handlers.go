package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/estatehub/listimport/internal/core"
	"github.com/estatehub/listimport/internal/csvio"
	"github.com/estatehub/listimport/internal/logging"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRules returns the active field rule table.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"rules":         s.service.Rules(),
		"propertyTypes": core.PropertyTypes,
	})
}

// handleCountries lists the known countries with their alias sets.
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	type countryInfo struct {
		Code    string   `json:"code"`
		Name    string   `json:"name"`
		Aliases []string `json:"aliases,omitempty"`
		Cities  int      `json:"cities"`
	}

	countries := s.service.Directory().Countries()
	out := make([]countryInfo, 0, len(countries))
	for _, c := range countries {
		out = append(out, countryInfo{
			Code:    c.Code,
			Name:    c.Name,
			Aliases: c.Aliases,
			Cities:  len(c.Cities),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"countries": out})
}

// handleCities lists the known cities of one country.
func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	cities := s.service.Directory().Cities(country)
	if cities == nil {
		respondErrorJSON(w, core.UserMessage{
			Message: fmt.Sprintf("Unknown country %q.", country),
			Action:  "Use an ISO code or full name from /api/countries.",
			Code:    "GEO001",
		}, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"country": country,
		"cities":  cities,
	})
}

// handleCitySearch performs a prefix/substring search across all cities.
func (s *Server) handleCitySearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := parseIntParam(r, "limit", 10)

	matches := s.service.Directory().SearchCities(query, limit)
	respondJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"matches": matches,
	})
}

// handlePostalLookup resolves a postal code prefix to its city.
func (s *Server) handlePostalLookup(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	code := chi.URLParam(r, "code")

	city, ok := s.service.Directory().CityForPostalCode(country, code)
	respondJSON(w, http.StatusOK, map[string]any{
		"country": country,
		"code":    code,
		"city":    city,
		"found":   ok,
	})
}

// handleValidate validates an uploaded CSV without persisting anything.
// Pass autocorrect=1 to apply city auto-correction before validation.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, fileName, cleanup, err := s.uploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	autoCorrect := boolParam(r, "autocorrect")

	outcome, err := s.service.ValidateCSV(r.Context(), body, autoCorrect)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("file validated",
		"file", fileName,
		"bytes", body.BytesRead,
		"total", outcome.Report.TotalRows,
		"valid", outcome.Report.ValidRows,
		"invalid", outcome.Report.InvalidRows,
	)

	respondJSON(w, http.StatusOK, outcome)
}

// handleImport validates an uploaded CSV and persists the valid rows.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, fileName, cleanup, err := s.uploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	autoCorrect := boolParam(r, "autocorrect")

	result, err := s.service.ImportCSV(r.Context(), body, fileName, autoCorrect)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import finished",
		"file", fileName,
		"bytes", body.BytesRead,
		"upload_id", result.UploadID,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)

	respondJSON(w, http.StatusCreated, result)
}

// handleUploadStatus returns the history record for one import.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		s.respondError(w, r, core.ErrUploadNotFound)
		return
	}

	rec, err := s.service.Upload(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleRollback deletes every property row inserted by an import.
func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uploadID"))
	if err != nil {
		s.respondError(w, r, core.ErrUploadNotFound)
		return
	}

	deleted, err := s.service.Rollback(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("upload rolled back",
		"upload_id", id, "deleted", deleted)

	respondJSON(w, http.StatusOK, map[string]any{
		"uploadId": id,
		"deleted":  deleted,
	})
}

// uploadBody returns the CSV payload of an upload request. Multipart
// requests use the "file" part; otherwise the raw body is the payload.
// The payload is wrapped in a CountingReader so handlers can log how
// much was actually read. The returned cleanup must be called after
// reading.
func (s *Server) uploadBody(w http.ResponseWriter, r *http.Request) (*csvio.CountingReader, string, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxFileSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", nil, fmt.Errorf("parse csv upload: %w", err)
		}
		return csvio.NewCountingReader(file), header.Filename, func() { file.Close() }, nil
	}

	return csvio.NewCountingReader(r.Body), "upload.csv", func() {}, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// boolParam reports whether a query parameter is set to a truthy value.
func boolParam(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
