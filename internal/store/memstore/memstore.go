// Package memstore is the in-memory reference implementation of
// store.Store. It is the substrate for engine and service tests and the
// behavioral yardstick for the SQL drivers: every driver must pass the
// same storetest suite this one does.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaezarrex/regularity/internal/model"
	"github.com/kaezarrex/regularity/internal/store"
)

type memStore struct {
	mu        sync.RWMutex
	owners    map[string]*model.Owner
	timelines map[string]*model.Timeline // key: ownerID + "\x00" + name
	dots      map[string]*model.Dot
	dashes    map[string]*model.Dash
	pendings  map[string]*model.Pending
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		owners:    make(map[string]*model.Owner),
		timelines: make(map[string]*model.Timeline),
		dots:      make(map[string]*model.Dot),
		dashes:    make(map[string]*model.Dash),
		pendings:  make(map[string]*model.Pending),
	}
}

func (s *memStore) Owners() store.Owners       { return (*owners)(s) }
func (s *memStore) Timelines() store.Timelines { return (*timelines)(s) }
func (s *memStore) Dots() store.Dots           { return (*dots)(s) }
func (s *memStore) Dashes() store.Dashes       { return (*dashes)(s) }
func (s *memStore) Pendings() store.Pendings   { return (*pendings)(s) }

func timelineKey(ownerID, name string) string { return ownerID + "\x00" + name }

// nameMatches implements the case-insensitive substring filter shared by
// every search surface.
func nameMatches(name, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}

// tail keeps the most recent n elements of an ascending-sorted slice,
// preserving ascending order. n <= 0 means no limit.
func tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// --- Owners ---

type owners memStore

func (o *owners) Create(ctx context.Context) (*model.Owner, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	own := &model.Owner{OwnerID: uuid.New().String(), CreationTime: model.Now()}
	o.owners[own.OwnerID] = own
	cp := *own
	return &cp, nil
}

func (o *owners) Get(ctx context.Context, ownerID string) (*model.Owner, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	own, ok := o.owners[ownerID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *own
	return &cp, nil
}

// --- Timelines ---

type timelines memStore

func (t *timelines) Ensure(ctx context.Context, ownerID, name string) (*model.Timeline, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tl, ok := t.timelines[timelineKey(ownerID, name)]; ok {
		cp := *tl
		return &cp, nil
	}
	tl := &model.Timeline{OwnerID: ownerID, Name: name, AllowOverlap: true, CreationTime: model.Now()}
	t.timelines[timelineKey(ownerID, name)] = tl
	cp := *tl
	return &cp, nil
}

func (t *timelines) Create(ctx context.Context, in *model.Timeline) (*model.Timeline, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tl := *in
	tl.CreationTime = model.Now()
	t.timelines[timelineKey(tl.OwnerID, tl.Name)] = &tl
	cp := tl
	return &cp, nil
}

func (t *timelines) Get(ctx context.Context, ownerID, name string) (*model.Timeline, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tl, ok := t.timelines[timelineKey(ownerID, name)]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *tl
	return &cp, nil
}

func (t *timelines) List(ctx context.Context, ownerID string) ([]*model.Timeline, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*model.Timeline
	for _, tl := range t.timelines {
		if tl.OwnerID == ownerID {
			cp := *tl
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Dots ---

type dots memStore

func (d *dots) Create(ctx context.Context, in *model.Dot) (*model.Dot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dot := *in
	if dot.DotID == "" {
		dot.DotID = uuid.New().String()
	}
	d.dots[dot.DotID] = &dot
	cp := dot
	return &cp, nil
}

func (d *dots) Get(ctx context.Context, ownerID, dotID string) (*model.Dot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dot, ok := d.dots[dotID]
	if !ok || dot.OwnerID != ownerID {
		return nil, model.ErrNotFound
	}
	cp := *dot
	return &cp, nil
}

func (d *dots) Update(ctx context.Context, in *model.Dot) (*model.Dot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cur, ok := d.dots[in.DotID]
	if !ok || cur.OwnerID != in.OwnerID {
		return nil, model.ErrNotFound
	}
	dot := *in
	d.dots[dot.DotID] = &dot
	cp := dot
	return &cp, nil
}

func (d *dots) Delete(ctx context.Context, ownerID, dotID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	dot, ok := d.dots[dotID]
	if !ok || dot.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(d.dots, dotID)
	return nil
}

func (d *dots) Search(ctx context.Context, req model.SearchRequest) ([]*model.Dot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*model.Dot
	for _, dot := range d.dots {
		if dot.OwnerID != req.OwnerID {
			continue
		}
		if req.Timeline != "" && dot.Timeline != req.Timeline {
			continue
		}
		if !nameMatches(dot.Name, req.Name) {
			continue
		}
		cp := *dot
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time.Time) {
			return out[i].Time.Before(out[j].Time.Time)
		}
		return out[i].DotID < out[j].DotID
	})
	return tail(out, req.Limit), nil
}

// --- Dashes ---

type dashes memStore

func sortDashes(out []*model.Dash) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].End.Equal(out[j].End.Time) {
			return out[i].End.Before(out[j].End.Time)
		}
		if !out[i].Start.Equal(out[j].Start.Time) {
			return out[i].Start.Before(out[j].Start.Time)
		}
		return out[i].DashID < out[j].DashID
	})
}

func (d *dashes) findWindow(ownerID, timeline string, start, end time.Time, keep func(*model.Dash) bool) []*model.Dash {
	var out []*model.Dash
	for _, dash := range d.dashes {
		if dash.OwnerID != ownerID || dash.Timeline != timeline {
			continue
		}
		if dash.Start.After(end) || dash.End.Before(start) {
			continue
		}
		if !keep(dash) {
			continue
		}
		cp := *dash
		out = append(out, &cp)
	}
	sortDashes(out)
	return out
}

func (d *dashes) FindOverlapping(ctx context.Context, ownerID, timeline, name string, start, end time.Time) ([]*model.Dash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.findWindow(ownerID, timeline, start, end, func(cand *model.Dash) bool {
		return cand.Name == name
	}), nil
}

func (d *dashes) FindConflicting(ctx context.Context, ownerID, timeline, excludeName string, start, end time.Time) ([]*model.Dash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.findWindow(ownerID, timeline, start, end, func(cand *model.Dash) bool {
		return cand.Name != excludeName
	}), nil
}

func (d *dashes) Apply(ctx context.Context, ownerID string, puts []*model.Dash, removeIDs []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range removeIDs {
		if cur, ok := d.dashes[id]; ok && cur.OwnerID == ownerID {
			delete(d.dashes, id)
		}
	}
	for _, p := range puts {
		dash := *p
		if dash.DashID == "" {
			dash.DashID = uuid.New().String()
		}
		d.dashes[dash.DashID] = &dash
	}
	return nil
}

func (d *dashes) Get(ctx context.Context, ownerID, dashID string) (*model.Dash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dash, ok := d.dashes[dashID]
	if !ok || dash.OwnerID != ownerID {
		return nil, model.ErrNotFound
	}
	cp := *dash
	return &cp, nil
}

func (d *dashes) Delete(ctx context.Context, ownerID, dashID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	dash, ok := d.dashes[dashID]
	if !ok || dash.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(d.dashes, dashID)
	return nil
}

func (d *dashes) Search(ctx context.Context, req model.SearchRequest) ([]*model.Dash, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*model.Dash
	for _, dash := range d.dashes {
		if dash.OwnerID != req.OwnerID {
			continue
		}
		if req.Timeline != "" && dash.Timeline != req.Timeline {
			continue
		}
		if !nameMatches(dash.Name, req.Name) {
			continue
		}
		cp := *dash
		out = append(out, &cp)
	}
	sortDashes(out)
	return tail(out, req.Limit), nil
}

// --- Pendings ---

type pendings memStore

func (p *pendings) Create(ctx context.Context, in *model.Pending) (*model.Pending, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cur := range p.pendings {
		if cur.OwnerID == in.OwnerID && cur.Timeline == in.Timeline && cur.Name == in.Name {
			return nil, model.ErrAlreadyPending
		}
	}
	pen := *in
	if pen.PendingID == "" {
		pen.PendingID = uuid.New().String()
	}
	p.pendings[pen.PendingID] = &pen
	cp := pen
	return &cp, nil
}

func (p *pendings) FindOne(ctx context.Context, ownerID, timeline, name string) (*model.Pending, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, cur := range p.pendings {
		if cur.OwnerID == ownerID && cur.Timeline == timeline && cur.Name == name {
			cp := *cur
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (p *pendings) Delete(ctx context.Context, ownerID, pendingID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pen, ok := p.pendings[pendingID]
	if !ok || pen.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(p.pendings, pendingID)
	return nil
}

func (p *pendings) Search(ctx context.Context, req model.SearchRequest) ([]*model.Pending, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*model.Pending
	for _, pen := range p.pendings {
		if pen.OwnerID != req.OwnerID {
			continue
		}
		if req.Timeline != "" && pen.Timeline != req.Timeline {
			continue
		}
		if !nameMatches(pen.Name, req.Name) {
			continue
		}
		cp := *pen
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start.Time) {
			return out[i].Start.Before(out[j].Start.Time)
		}
		return out[i].PendingID < out[j].PendingID
	})
	return tail(out, req.Limit), nil
}
