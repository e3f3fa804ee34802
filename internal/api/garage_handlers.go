package api

import (
	"encoding/json"
	"net/http"

	"parkshare/internal/auth"
	"parkshare/internal/entities"
	httperrors "parkshare/internal/errors"
	"parkshare/internal/service"
)

type GarageHandler struct {
	Service *service.GarageService
}

func NewGarageHandler(svc *service.GarageService) *GarageHandler {
	return &GarageHandler{Service: svc}
}

func (h *GarageHandler) ListGarages(w http.ResponseWriter, r *http.Request) {
	garages, err := h.Service.ListGarages(r.Context())
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	resp := []entities.GarageResponse{}
	for _, g := range garages {
		resp = append(resp, toGarageResponse(g))
	}
	writeJSON(w, resp)
}

func (h *GarageHandler) GetGarage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid garage ID", http.StatusBadRequest)
		return
	}
	g, err := h.Service.GetGarage(r.Context(), id)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, toGarageResponse(*g))
}

func (h *GarageHandler) PublishGarage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req entities.GarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	g, err := h.Service.PublishGarage(r.Context(), user.ID, req)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toGarageResponse(*g))
}

func (h *GarageHandler) UpdateSpots(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid garage ID", http.StatusBadRequest)
		return
	}
	var req UpdateSpotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.UpdateSpots(r.Context(), user.ID, id, req.TotalSpots); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Garage spots updated"})
}
