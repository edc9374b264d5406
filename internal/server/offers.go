package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/store"
)

// offerRequest is the create/update body.
type offerRequest struct {
	Name          string   `json:"name"`
	ValueProps    []string `json:"value_props"`
	IdealUseCases []string `json:"ideal_use_cases"`
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	offer, err := s.store.CreateOffer(r.Context(), model.Offer{
		Name:          req.Name,
		ValueProps:    req.ValueProps,
		IdealUseCases: req.IdealUseCases,
	})
	if err != nil {
		zap.L().Error("server: create offer", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "create offer failed")
		return
	}

	respondJSON(w, http.StatusCreated, offer)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.store.ListOffers(r.Context())
	if err != nil {
		zap.L().Error("server: list offers", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "list offers failed")
		return
	}
	if offers == nil {
		offers = []model.Offer{}
	}
	respondJSON(w, http.StatusOK, offers)
}

func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	offer, err := s.store.GetOffer(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "offer not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get offer", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "get offer failed")
		return
	}

	respondJSON(w, http.StatusOK, offer)
}

func (s *Server) handleUpdateOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	_, err := s.store.UpdateOffer(r.Context(), model.Offer{
		ID:            id,
		Name:          req.Name,
		ValueProps:    req.ValueProps,
		IdealUseCases: req.IdealUseCases,
	})
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "offer not found")
		return
	}
	if err != nil {
		zap.L().Error("server: update offer", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "update offer failed")
		return
	}

	// Re-read so the response carries the stored timestamps.
	offer, err := s.store.GetOffer(r.Context(), id)
	if err != nil {
		zap.L().Error("server: update offer readback", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "update offer failed")
		return
	}

	respondJSON(w, http.StatusOK, offer)
}

func (s *Server) handleDeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.DeleteOffer(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "offer not found")
		return
	}
	if err != nil {
		zap.L().Error("server: delete offer", zap.String("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "delete offer failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
