package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/services"
)

type TimelineHandler struct {
	svc *services.TimelineService
}

func NewTimelineHandler(svc *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{svc: svc}
}

func (h *TimelineHandler) CreateTimeline(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	var in struct {
		Name         string `json:"name"`
		AllowOverlap *bool  `json:"allowOverlap,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	tl := &model.Timeline{OwnerID: ownerID, Name: in.Name, AllowOverlap: true}
	if in.AllowOverlap != nil {
		tl.AllowOverlap = *in.AllowOverlap
	}
	out, err := h.svc.CreateTimeline(r.Context(), tl)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

func (h *TimelineHandler) ListTimelines(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	out, err := h.svc.ListTimelines(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"timelines": out, "count": len(out)})
}
