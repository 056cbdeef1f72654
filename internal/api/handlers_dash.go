package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/services"
)

type DashHandler struct {
	svc *services.DashService
}

func NewDashHandler(svc *services.DashService) *DashHandler { return &DashHandler{svc: svc} }

func (h *DashHandler) LogDash(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	var in struct {
		Timeline string      `json:"timeline"`
		Name     string      `json:"name"`
		Start    *model.Time `json:"start,omitempty"`
		End      *model.Time `json:"end,omitempty"`
		Note     *string     `json:"note,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	dash := &model.Dash{OwnerID: ownerID, Timeline: in.Timeline, Name: in.Name, Note: in.Note}
	if in.Start != nil {
		dash.Start = *in.Start
	}
	if in.End != nil {
		dash.End = *in.End
	}
	out, err := h.svc.LogDash(r.Context(), dash)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *DashHandler) GetDash(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	out, err := h.svc.GetDash(r.Context(), vars["ownerId"], vars["dashId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *DashHandler) DeleteDash(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteDash(r.Context(), vars["ownerId"], vars["dashId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DashHandler) ListDashes(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	req, err := searchRequest(r, ownerID)
	if err != nil {
		respond.WriteBadRequest(w, "invalid limit")
		return
	}
	out, err := h.svc.ListDashes(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"dashes": out, "count": len(out)})
}
