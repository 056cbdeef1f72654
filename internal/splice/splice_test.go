package splice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaezarrex/regularity/internal/model"
)

func at(hh, mm int) model.Time {
	return model.At(time.Date(2012, 3, 14, hh, mm, 0, 0, time.UTC))
}

func TestSpliceOrdersByChronologicalKey(t *testing.T) {
	dots := []*model.Dot{{DotID: "dot1", Name: "standup", Time: at(9, 30)}}
	dashes := []*model.Dash{{DashID: "dash1", Name: "coding", Start: at(10, 0), End: at(11, 0)}}
	pendings := []*model.Pending{{PendingID: "pend1", Name: "review", Start: at(9, 0)}}

	events := Splice(dots, dashes, pendings, false)
	require.Len(t, events, 3)

	// pending keyed by start, dot by time, dash by end
	assert.Equal(t, KindPending, events[0].Type)
	assert.Equal(t, KindDot, events[1].Type)
	assert.Equal(t, KindDash, events[2].Type)
}

func TestSpliceReverse(t *testing.T) {
	dots := []*model.Dot{{DotID: "dot1", Time: at(9, 0)}}
	dashes := []*model.Dash{{DashID: "dash1", Start: at(10, 0), End: at(11, 0)}}

	events := Splice(dots, dashes, nil, true)
	require.Len(t, events, 2)
	assert.Equal(t, KindDash, events[0].Type)
	assert.Equal(t, KindDot, events[1].Type)
}

func TestSpliceEmptyInputs(t *testing.T) {
	assert.Empty(t, Splice(nil, nil, nil, false))
}

func TestSpliceStableOnTies(t *testing.T) {
	dots := []*model.Dot{{DotID: "dot1", Time: at(10, 0)}}
	dashes := []*model.Dash{{DashID: "dash1", Start: at(9, 0), End: at(10, 0)}}
	pendings := []*model.Pending{{PendingID: "pend1", Start: at(10, 0)}}

	events := Splice(dots, dashes, pendings, false)
	require.Len(t, events, 3)
	assert.Equal(t, KindDot, events[0].Type)
	assert.Equal(t, KindDash, events[1].Type)
	assert.Equal(t, KindPending, events[2].Type)
}
