// Package splice flattens dots, dashes and pendings into one
// chronological listing. Each record is wrapped with a type
// discriminator so a mixed stream stays self-describing.
package splice

import (
	"sort"
	"time"

	"github.com/kaezarrex/regularity/internal/model"
)

// Record kinds carried in the Type field of an Event.
const (
	KindDot     = "dot"
	KindDash    = "dash"
	KindPending = "pending"
)

// Event is one entry of a spliced listing. Exactly one of Dot, Dash,
// Pending is set, matching Type; the inner record is inlined into the
// JSON object next to the discriminator.
type Event struct {
	Type     string         `json:"type"`
	Dot      *model.Dot     `json:"dot,omitempty"`
	Dash     *model.Dash    `json:"dash,omitempty"`
	Pending  *model.Pending `json:"pending,omitempty"`
	sortTime time.Time
}

// Time returns the instant the event is ordered by: a dot's time, a
// dash's end, a pending's start.
func (e Event) Time() time.Time { return e.sortTime }

// Splice merges the three record kinds into a single listing sorted by
// each record's chronological key, oldest first, or newest first when
// reverse is set. The sort is stable, so records sharing an instant keep
// dot, dash, pending order.
func Splice(dots []*model.Dot, dashes []*model.Dash, pendings []*model.Pending, reverse bool) []Event {
	events := make([]Event, 0, len(dots)+len(dashes)+len(pendings))
	for _, d := range dots {
		events = append(events, Event{Type: KindDot, Dot: d, sortTime: d.Time.Time})
	}
	for _, d := range dashes {
		events = append(events, Event{Type: KindDash, Dash: d, sortTime: d.End.Time})
	}
	for _, p := range pendings {
		events = append(events, Event{Type: KindPending, Pending: p, sortTime: p.Start.Time})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if reverse {
			i, j = j, i
		}
		return events[i].sortTime.Before(events[j].sortTime)
	})
	return events
}
