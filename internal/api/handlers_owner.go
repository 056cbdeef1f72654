package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/services"
)

type OwnerHandler struct {
	svc *services.OwnerService
}

func NewOwnerHandler(svc *services.OwnerService) *OwnerHandler { return &OwnerHandler{svc: svc} }

func (h *OwnerHandler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CreateOwner(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *OwnerHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	out, err := h.svc.GetOwner(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
