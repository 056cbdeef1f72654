package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/services"
)

type DotHandler struct {
	svc *services.DotService
}

func NewDotHandler(svc *services.DotService) *DotHandler { return &DotHandler{svc: svc} }

func (h *DotHandler) LogDot(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	var in struct {
		Timeline string      `json:"timeline"`
		Name     string      `json:"name"`
		Time     *model.Time `json:"time,omitempty"`
		Note     *string     `json:"note,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	dot := &model.Dot{OwnerID: ownerID, Timeline: in.Timeline, Name: in.Name, Note: in.Note}
	if in.Time != nil {
		dot.Time = *in.Time
	}
	out, err := h.svc.LogDot(r.Context(), dot)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *DotHandler) GetDot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	out, err := h.svc.GetDot(r.Context(), vars["ownerId"], vars["dotId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *DotHandler) UpdateDot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var in struct {
		Timeline string      `json:"timeline"`
		Name     string      `json:"name"`
		Time     *model.Time `json:"time,omitempty"`
		Note     *string     `json:"note,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	dot := &model.Dot{
		DotID:    vars["dotId"],
		OwnerID:  vars["ownerId"],
		Timeline: in.Timeline,
		Name:     in.Name,
		Note:     in.Note,
	}
	if in.Time != nil {
		dot.Time = *in.Time
	}
	out, err := h.svc.UpdateDot(r.Context(), dot)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *DotHandler) DeleteDot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteDot(r.Context(), vars["ownerId"], vars["dotId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DotHandler) ListDots(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	req, err := searchRequest(r, ownerID)
	if err != nil {
		respond.WriteBadRequest(w, "invalid limit")
		return
	}
	out, err := h.svc.ListDots(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"dots": out, "count": len(out)})
}
