package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/mask"
)

func TestParseThresholds(t *testing.T) {
	got, err := parseThresholds("38:-70, 120:-65.5")
	require.NoError(t, err)
	assert.Equal(t, []mask.ThresholdParams{
		{FrequencyKHz: 38, ThresholdDB: -70},
		{FrequencyKHz: 120, ThresholdDB: -65.5},
	}, got)

	for _, bad := range []string{"", "38", "x:-70", "38:y"} {
		_, err := parseThresholds(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func testChannels(t *testing.T) echogram.Channels {
	t.Helper()
	g38, err := echogram.FromRows([][]float64{
		{-60, -80, -60},
		{-80, -80, -60},
	}, -999)
	require.NoError(t, err)
	g120, err := echogram.FromRows([][]float64{
		{-60, -60, -80},
		{-80, -80, -60},
	}, -999)
	require.NoError(t, err)
	obs := echogram.Uniform(3, 0, 1, 1)
	return echogram.Channels{
		38:  {Sv: g38, Obs: obs},
		120: {Sv: g120, Obs: obs.Clone()},
	}
}

func TestCompose_Modes(t *testing.T) {
	ths := []mask.ThresholdParams{{FrequencyKHz: 38, ThresholdDB: -70}, {FrequencyKHz: 120, ThresholdDB: -70}}

	pa, err := compose(mask.NewRegistry(), testChannels(t), 38, ths, mask.PresenceAbsence)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 1, 1}, {0, 0, 1}}, pa.Cells.ToRows())

	bw, err := compose(mask.NewRegistry(), testChannels(t), 38, ths, mask.Bitwise)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{3, 1, 2}, {0, 0, 3}}, bw.Cells.ToRows())
	assert.Equal(t, []bin{{0, 2}, {1, 1}, {2, 1}, {3, 2}}, histogram(bw.Cells))
}

func TestCompose_MissingReference(t *testing.T) {
	ths := []mask.ThresholdParams{{FrequencyKHz: 120, ThresholdDB: -70}}
	_, err := compose(mask.NewRegistry(), testChannels(t), 38, ths, mask.PresenceAbsence)
	assert.Error(t, err)
}
