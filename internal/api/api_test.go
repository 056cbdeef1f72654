package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaezarrex/regularity/internal/engine"
	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/services"
	"github.com/kaezarrex/regularity/internal/store/memstore"
)

// newTestRouter wires every handler over a fresh memstore, mirroring the
// production route table.
func newTestRouter() *mux.Router {
	st := memstore.New()
	e := engine.New(st, engine.DefaultBuffer)

	owner := NewOwnerHandler(services.NewOwnerService(st))
	timeline := NewTimelineHandler(services.NewTimelineService(st, e))
	dot := NewDotHandler(services.NewDotService(st))
	dash := NewDashHandler(services.NewDashService(st, e))
	pending := NewPendingHandler(services.NewPendingService(st, e))
	search := NewSearchHandler(services.NewSearchService(st))

	r := mux.NewRouter()
	r.HandleFunc("/api/owners", owner.CreateOwner).Methods("POST")
	r.HandleFunc("/api/owners/{ownerId}", owner.GetOwner).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/timelines", timeline.CreateTimeline).Methods("POST")
	r.HandleFunc("/api/owners/{ownerId}/timelines", timeline.ListTimelines).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/dots", dot.LogDot).Methods("POST")
	r.HandleFunc("/api/owners/{ownerId}/dots", dot.ListDots).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/dots/{dotId}", dot.GetDot).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/dots/{dotId}", dot.UpdateDot).Methods("PUT")
	r.HandleFunc("/api/owners/{ownerId}/dots/{dotId}", dot.DeleteDot).Methods("DELETE")
	r.HandleFunc("/api/owners/{ownerId}/dashes", dash.LogDash).Methods("POST")
	r.HandleFunc("/api/owners/{ownerId}/dashes", dash.ListDashes).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/dashes/{dashId}", dash.GetDash).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/dashes/{dashId}", dash.DeleteDash).Methods("DELETE")
	r.HandleFunc("/api/owners/{ownerId}/pendings", pending.StartPending).Methods("POST")
	r.HandleFunc("/api/owners/{ownerId}/pendings", pending.ListPendings).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/pendings", pending.CancelPending).Methods("DELETE")
	r.HandleFunc("/api/owners/{ownerId}/pendings/finish", pending.FinishPending).Methods("POST")
	r.HandleFunc("/api/owners/{ownerId}/search", search.Search).Methods("GET")
	r.HandleFunc("/api/owners/{ownerId}/events", search.ListEvents).Methods("GET")
	return r
}

func do(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createOwner(t *testing.T, r *mux.Router) string {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/owners", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var own model.Owner
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &own))
	require.NotEmpty(t, own.OwnerID)
	return own.OwnerID
}

func TestOwnerEndpoints(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)

	rec := do(t, r, http.MethodGet, "/api/owners/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/owners/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogDashMergesOverHTTP(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)
	base := "/api/owners/" + id

	rec := do(t, r, http.MethodPost, base+"/dashes", map[string]string{
		"timeline": "work", "name": "coding",
		"start": "2012-03-14T10:00:00.000000", "end": "2012-03-14T10:10:00.000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, http.MethodPost, base+"/dashes", map[string]string{
		"timeline": "work", "name": "coding",
		"start": "2012-03-14T10:10:03.000000", "end": "2012-03-14T10:20:00.000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, http.MethodGet, base+"/dashes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Dashes []*model.Dash `json:"dashes"`
		Count  int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "2012-03-14T10:00:00.000000", out.Dashes[0].Start.Format(model.TimeLayout))
	assert.Equal(t, "2012-03-14T10:20:00.000000", out.Dashes[0].End.Format(model.TimeLayout))
}

func TestLogDashRejectsInvertedRange(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)

	rec := do(t, r, http.MethodPost, "/api/owners/"+id+"/dashes", map[string]string{
		"timeline": "work", "name": "coding",
		"start": "2012-03-14T11:00:00.000000", "end": "2012-03-14T10:00:00.000000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogDashRejectsMalformedJSON(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)

	req := httptest.NewRequest(http.MethodPost, "/api/owners/"+id+"/dashes",
		bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDotLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)
	base := "/api/owners/" + id

	rec := do(t, r, http.MethodPost, base+"/dots", map[string]string{
		"timeline": "work", "name": "standup", "time": "2012-03-14T09:00:00.000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var dot model.Dot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dot))

	rec = do(t, r, http.MethodGet, fmt.Sprintf("%s/dots/%s", base, dot.DotID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodPut, fmt.Sprintf("%s/dots/%s", base, dot.DotID), map[string]string{
		"timeline": "work", "name": "retro",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Dot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "retro", updated.Name)
	// omitting the time keeps the stored one
	assert.Equal(t, "2012-03-14T09:00:00.000000", updated.Time.Format(model.TimeLayout))

	rec = do(t, r, http.MethodDelete, fmt.Sprintf("%s/dots/%s", base, dot.DotID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodGet, fmt.Sprintf("%s/dots/%s", base, dot.DotID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPendingEndpoints(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)
	base := "/api/owners/" + id

	start := map[string]string{
		"timeline": "work", "name": "coding", "start": "2012-03-14T10:00:00.000000",
	}
	rec := do(t, r, http.MethodPost, base+"/pendings", start)
	require.Equal(t, http.StatusCreated, rec.Code)

	// second start on the same key conflicts
	rec = do(t, r, http.MethodPost, base+"/pendings", start)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPost, base+"/pendings/finish", map[string]string{
		"timeline": "work", "name": "coding", "end": "2012-03-14T11:00:00.000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var dash model.Dash
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, "2012-03-14T10:00:00.000000", dash.Start.Format(model.TimeLayout))

	// finishing again: nothing open
	rec = do(t, r, http.MethodPost, base+"/pendings/finish", map[string]string{
		"timeline": "work", "name": "coding",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// cancel of an absent pending is still a 204
	rec = do(t, r, http.MethodDelete, base+"/pendings?timeline=work&name=coding", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSearchAndEventsEndpoints(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)
	base := "/api/owners/" + id

	rec := do(t, r, http.MethodPost, base+"/dots", map[string]string{
		"timeline": "work", "name": "standup", "time": "2012-03-14T09:30:00.000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, http.MethodPost, base+"/dashes", map[string]string{
		"timeline": "work", "name": "coding",
		"start": "2012-03-14T10:00:00.000000", "end": "2012-03-14T11:00:00.000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, r, http.MethodPost, base+"/pendings", map[string]string{
		"timeline": "work", "name": "review", "start": "2012-03-14T09:00:00.000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, r, http.MethodGet, base+"/search", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res model.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Dots, 1)
	assert.Len(t, res.Dashes, 1)
	assert.Len(t, res.Pendings, 1)

	rec = do(t, r, http.MethodGet, base+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events struct {
		Events []struct {
			Type string `json:"type"`
		} `json:"events"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Equal(t, 3, events.Count)
	assert.Equal(t, "pending", events.Events[0].Type)
	assert.Equal(t, "dot", events.Events[1].Type)
	assert.Equal(t, "dash", events.Events[2].Type)
}

func TestListDotsRejectsBadLimit(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)

	rec := do(t, r, http.MethodGet, "/api/owners/"+id+"/dots?limit=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTimelineEndpoint(t *testing.T) {
	r := newTestRouter()
	id := createOwner(t, r)
	base := "/api/owners/" + id

	rec := do(t, r, http.MethodPost, base+"/timelines", map[string]interface{}{
		"name": "day", "allowOverlap": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tl model.Timeline
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tl))
	assert.False(t, tl.AllowOverlap)

	rec = do(t, r, http.MethodGet, base+"/timelines", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestWriteServiceErrorMapsStoreUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("%w: dial tcp: connection refused", model.ErrStoreUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
