package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/services"
	"github.com/kaezarrex/regularity/internal/splice"
)

// SearchHandler serves the fan-out search and the spliced chronological
// event listing.
type SearchHandler struct {
	svc *services.SearchService
}

func NewSearchHandler(svc *services.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	req, err := searchRequest(r, ownerID)
	if err != nil {
		respond.WriteBadRequest(w, "invalid limit")
		return
	}
	out, err := h.svc.Search(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListEvents flattens dots, dashes and pendings into one chronological
// stream. ?reverse=true lists newest first.
func (h *SearchHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerId"]
	req, err := searchRequest(r, ownerID)
	if err != nil {
		respond.WriteBadRequest(w, "invalid limit")
		return
	}
	res, err := h.svc.Search(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	reverse := r.URL.Query().Get("reverse") == "true"
	events := splice.Splice(res.Dots, res.Dashes, res.Pendings, reverse)
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}
