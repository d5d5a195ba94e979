package echogram

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoChannelJSON = `{
  "channels": [
    {
      "frequency_khz": 38,
      "sv": [[-70, null], [-60, -999]],
      "start_depth": [0, 0],
      "sample_interval": [0.2, 0.2],
      "pulse_length": [1.024, 1.024]
    },
    {
      "frequency_khz": 120,
      "no_data": -500,
      "sv": [[-500, -80]],
      "start_depth": [1, 1],
      "sample_interval": [0.1, 0.1],
      "pulse_length": [0.512, 0.512]
    }
  ]
}`

func TestReadChannelsJSON(t *testing.T) {
	cs, err := ReadChannelsJSON(strings.NewReader(twoChannelJSON))
	require.NoError(t, err)
	assert.Equal(t, []float64{38, 120}, cs.Frequencies())

	ch, err := cs.Channel(38)
	require.NoError(t, err)
	assert.False(t, ch.Sv.Valid(0, 1), "null is missing data")
	v, ok := ch.Sv.At(1, 1)
	assert.True(t, ok, "an undeclared sentinel is ordinary data")
	assert.Equal(t, -999.0, v)
	assert.Equal(t, 0.2, ch.Obs.SampleInterval[1])

	hi, err := cs.Channel(120)
	require.NoError(t, err)
	assert.False(t, hi.Sv.Valid(0, 0), "per-channel no_data sentinel honoured")
	assert.True(t, hi.Sv.Valid(0, 1))

	_, err = cs.Channel(200)
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}

func TestReadChannelsJSON_ObsLengthMismatch(t *testing.T) {
	in := `{"channels":[{"frequency_khz":38,"sv":[[-70,-60]],"start_depth":[0],
	"sample_interval":[0.2,0.2],"pulse_length":[1,1]}]}`
	_, err := ReadChannelsJSON(strings.NewReader(in))
	assert.ErrorIs(t, err, ErrObsLength)
}

func TestWriteChannelsJSON_RoundTrip(t *testing.T) {
	cs, err := ReadChannelsJSON(strings.NewReader(twoChannelJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteChannelsJSON(&buf, cs))

	again, err := ReadChannelsJSON(&buf)
	require.NoError(t, err)
	for _, f := range cs.Frequencies() {
		assert.Equal(t, cs[f].Sv.ValidCount(), again[f].Sv.ValidCount())
		assert.Equal(t, cs[f].Sv.ToRows(1), again[f].Sv.ToRows(1))
		assert.Equal(t, cs[f].Obs, again[f].Obs)
	}
}

func TestWriteChannelsJSON_KeepsFloorValues(t *testing.T) {
	g := NewGridFill(4, 3, -999)
	g.Set(1, 1, -60)
	g.Invalidate(3, 2)
	cs := Channels{38: {Sv: g, Obs: Uniform(3, 0, 1, 1)}}

	var buf bytes.Buffer
	require.NoError(t, WriteChannelsJSON(&buf, cs))
	again, err := ReadChannelsJSON(&buf)
	require.NoError(t, err)

	got := again[38].Sv
	assert.Equal(t, 11, got.ValidCount())
	v, ok := got.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, -999.0, v)
	assert.False(t, got.Valid(3, 2))
}

func TestObsParams(t *testing.T) {
	o := Uniform(3, 5, 0.5, 1.024)
	require.NoError(t, o.Validate(3))
	assert.ErrorIs(t, o.Validate(4), ErrObsLength)
	assert.Equal(t, 6.0, o.Depth(2, 1))

	other := o.Clone()
	other.StartDepth[2] = 7
	assert.True(t, o.Matches(0, other, 0))
	assert.False(t, o.Matches(2, other, 2))
	assert.Equal(t, 5.0, o.StartDepth[2], "clone is independent")
}
