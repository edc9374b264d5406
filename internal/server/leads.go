package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/leadfile"
	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/pipeline"
	"github.com/sells-group/leadscore/internal/store"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100

	// maxUploadBytes bounds multipart memory use on lead uploads.
	maxUploadBytes = 32 << 20
)

// leadRequest is the create body. linkedin_bio is the only optional field.
type leadRequest struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	LinkedInBio string `json:"linkedin_bio"`
}

func (req *leadRequest) missingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"role", req.Role},
		{"company", req.Company},
		{"industry", req.Industry},
		{"location", req.Location},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if missing := req.missingFields(); len(missing) > 0 {
		respondError(w, http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
		return
	}

	lead, err := s.store.CreateLead(r.Context(), model.Lead{
		Name:        req.Name,
		Role:        req.Role,
		Company:     req.Company,
		Industry:    req.Industry,
		Location:    req.Location,
		LinkedInBio: req.LinkedInBio,
	})
	if err != nil {
		zap.L().Error("server: create lead", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "create lead failed")
		return
	}

	respondJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.store.ListLeads(r.Context(), store.LeadFilter{})
	if err != nil {
		zap.L().Error("server: list leads", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "list leads failed")
		return
	}

	// The store returns insertion order; the listing shows newest first.
	for i, j := 0, len(leads)-1; i < j; i, j = i+1, j-1 {
		leads[i], leads[j] = leads[j], leads[i]
	}
	respondJSON(w, http.StatusOK, leads)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := s.store.GetLead(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "lead not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get lead", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "get lead failed")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read upload failed")
		return
	}

	var (
		parsed  []model.Lead
		rowErrs []leadfile.RowError
	)
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		parsed, rowErrs, err = leadfile.ParseCSV(bytes.NewReader(data), leadfile.CSVOptions{})
	case ".xlsx":
		parsed, rowErrs, err = leadfile.ParseXLSX(data)
	default:
		respondError(w, http.StatusBadRequest, "file must be CSV or XLSX format")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, re := range rowErrs {
		zap.L().Warn("server: upload row rejected",
			zap.String("file", header.Filename),
			zap.Int("line", re.Line),
			zap.Error(re.Err),
		)
	}

	created := make([]model.Lead, 0, len(parsed))
	for _, lead := range parsed {
		stored, err := s.store.CreateLead(r.Context(), lead)
		if err != nil {
			zap.L().Error("server: upload insert", zap.String("file", header.Filename), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "upload failed")
			return
		}
		created = append(created, *stored)
	}

	zap.L().Info("server: leads uploaded",
		zap.String("file", header.Filename),
		zap.Int("created", len(created)),
		zap.Int("rejected_rows", len(rowErrs)),
	)
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if errors.Is(err, pipeline.ErrNoOffer) {
		respondError(w, http.StatusBadRequest, "no offer configured")
		return
	}
	if err != nil {
		zap.L().Error("server: scoring run", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	leads, err := s.store.ListLeads(r.Context(), store.LeadFilter{})
	if err != nil {
		zap.L().Error("server: results", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "results failed")
		return
	}

	scored := pipeline.ScoredResults(leads)
	page, pageSize := pageParams(r)

	start := (page - 1) * pageSize
	if start > len(scored) {
		start = len(scored)
	}
	end := start + pageSize
	if end > len(scored) {
		end = len(scored)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(scored),
		"results": scored[start:end],
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	leads, err := s.store.ListLeads(r.Context(), store.LeadFilter{})
	if err != nil {
		zap.L().Error("server: export", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads_export.csv"`)
	if err := leadfile.WriteCSV(w, pipeline.ScoredResults(leads)); err != nil {
		zap.L().Error("server: export write", zap.Error(err))
	}
}

// pageParams reads page/page_size, clamping to sane bounds. Bad values fall
// back to the defaults rather than erroring.
func pageParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v >= 1 {
		pageSize = v
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}
	return page, pageSize
}
