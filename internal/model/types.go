package model

// Owner is an issued client identity. Every record in the system is scoped
// to exactly one owner.
type Owner struct {
	OwnerID      string `json:"ownerId"`
	CreationTime Time   `json:"creationTime"`
}

// Timeline is a named lane of activity under an owner. Timelines are created
// implicitly the first time a record references them; AllowOverlap controls
// whether different-name activities may coexist in time on the lane.
type Timeline struct {
	OwnerID      string `json:"ownerId"`
	Name         string `json:"name"`
	AllowOverlap bool   `json:"allowOverlap"`
	CreationTime Time   `json:"creationTime"`
}

// Dot is an instantaneous event. Dots never merge.
type Dot struct {
	DotID    string  `json:"dotId"`
	OwnerID  string  `json:"ownerId"`
	Timeline string  `json:"timeline"`
	Name     string  `json:"name"`
	Time     Time    `json:"time"`
	Note     *string `json:"note,omitempty"`
}

// Dash is a closed ranged activity. Dashes sharing (owner, timeline, name)
// whose ranges fall within the contiguity buffer of each other are
// consolidated into a single spanning record by the engine.
type Dash struct {
	DashID   string  `json:"dashId"`
	OwnerID  string  `json:"ownerId"`
	Timeline string  `json:"timeline"`
	Name     string  `json:"name"`
	Start    Time    `json:"start"`
	End      Time    `json:"end"`
	Note     *string `json:"note,omitempty"`
}

// Pending is an open ranged activity awaiting a finish time. At most one
// pending exists per (owner, timeline, name).
type Pending struct {
	PendingID string  `json:"pendingId"`
	OwnerID   string  `json:"ownerId"`
	Timeline  string  `json:"timeline"`
	Name      string  `json:"name"`
	Start     Time    `json:"start"`
	Note      *string `json:"note,omitempty"`
}

// SearchRequest captures the filters shared by all listing operations.
// Name matches case-insensitively as a substring; Limit keeps the most
// recent N records (results are still returned oldest-first).
type SearchRequest struct {
	OwnerID  string
	Name     string
	Timeline string
	Limit    int
}

// SearchResult is the fan-out over the three record kinds.
type SearchResult struct {
	Dots     []*Dot     `json:"dots"`
	Dashes   []*Dash    `json:"dashes"`
	Pendings []*Pending `json:"pendings"`
}
