package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRoundTrip(t *testing.T) {
	in := At(time.Date(2012, 3, 14, 9, 26, 53, 589793000, time.UTC))
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"2012-03-14T09:26:53.589793"`, string(b))

	var out Time
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, out.Equal(in.Time))
}

func TestTimeNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := At(time.Date(2012, 3, 14, 9, 0, 0, 0, loc))
	assert.Equal(t, "2012-03-14T14:00:00.000000", in.String())
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := ParseTime("2012-03-14")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTimeScanVariants(t *testing.T) {
	want := time.Date(2020, 1, 2, 3, 4, 5, 678901000, time.UTC)

	var fromTime Time
	require.NoError(t, fromTime.Scan(want))
	assert.True(t, fromTime.Equal(want))

	var fromString Time
	require.NoError(t, fromString.Scan("2020-01-02T03:04:05.678901"))
	assert.True(t, fromString.Equal(want))

	var fromRFC Time
	require.NoError(t, fromRFC.Scan("2020-01-02T03:04:05.678901Z"))
	assert.True(t, fromRFC.Equal(want))
}
