package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/services"
)

type PendingHandler struct {
	svc *services.PendingService
}

func NewPendingHandler(svc *services.PendingService) *PendingHandler {
	return &PendingHandler{svc: svc}
}

func (h *PendingHandler) StartPending(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	var in struct {
		Timeline string      `json:"timeline"`
		Name     string      `json:"name"`
		Start    *model.Time `json:"start,omitempty"`
		Note     *string     `json:"note,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	p := &model.Pending{OwnerID: ownerID, Timeline: in.Timeline, Name: in.Name, Note: in.Note}
	if in.Start != nil {
		p.Start = *in.Start
	}
	out, err := h.svc.StartPending(r.Context(), p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// FinishPending converts the open pending into a dash. The response is
// the consolidated dash, not the pending.
func (h *PendingHandler) FinishPending(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	var in struct {
		Timeline string      `json:"timeline"`
		Name     string      `json:"name"`
		End      *model.Time `json:"end,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	var end model.Time
	if in.End != nil {
		end = *in.End
	}
	out, err := h.svc.FinishPending(r.Context(), ownerID, in.Timeline, in.Name, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func (h *PendingHandler) CancelPending(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	timeline := r.URL.Query().Get("timeline")
	name := r.URL.Query().Get("name")
	if err := h.svc.CancelPending(r.Context(), ownerID, timeline, name); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PendingHandler) ListPendings(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	req, err := searchRequest(r, ownerID)
	if err != nil {
		respond.WriteBadRequest(w, "invalid limit")
		return
	}
	out, err := h.svc.ListPendings(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"pendings": out, "count": len(out)})
}
