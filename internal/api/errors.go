// Package api contains the HTTP handlers, one per entity, plus the
// shared error mapping and query parsing they rely on.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kaezarrex/regularity/internal/api/respond"
	"github.com/kaezarrex/regularity/internal/model"
)

// writeServiceError maps service-layer sentinel errors onto HTTP status
// codes. Anything unrecognized is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidRange):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNoPending):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrAlreadyPending):
		respond.WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		respond.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// searchRequest builds the shared listing filter from the route owner id
// and the name/timeline/limit query parameters.
func searchRequest(r *http.Request, ownerID string) (model.SearchRequest, error) {
	req := model.SearchRequest{
		OwnerID:  ownerID,
		Name:     r.URL.Query().Get("name"),
		Timeline: r.URL.Query().Get("timeline"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return req, model.ErrValidation
		}
		req.Limit = n
	}
	return req, nil
}
