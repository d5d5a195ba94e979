package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/ssl"
)

func TestBuildPulse(t *testing.T) {
	t.Parallel()
	sv, err := echogram.FromRows([][]float64{
		{-20, -20, -500},
		{-30, -30, -60},
		{-999, -40, -60},
		{-60, -500, -60},
	}, -999)
	require.NoError(t, err)
	chans := echogram.Channels{38: {Sv: sv, Obs: echogram.Uniform(3, 0, 1, 1)}}

	r := NewRegistry()
	h, err := r.RegisterPulse(PulseParams{FrequencyKHz: 38, MaskValue: -500})
	require.NoError(t, err)
	layer, err := r.Build(chans, h)
	require.NoError(t, err)

	assert.Equal(t, [][]int{
		{0, 0, 1},
		{0, 0, 1},
		{1, 0, 1},
		{1, 1, 1},
	}, layer.Cells.ToRows())
}

func TestBuild_WrongParamsType(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	h, err := r.Register(KindBinary, NamePulse, BuildPulse, ThresholdParams{FrequencyKHz: 38})
	require.NoError(t, err)
	_, err = r.Build(echogram.Channels{}, h)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func sslChannels() echogram.Channels {
	g := echogram.NewGridFill(100, 50, -999)
	for r := 20; r <= 40; r++ {
		for c := 0; c < 50; c++ {
			g.Set(r, c, -60)
		}
	}
	return echogram.Channels{38: {Sv: g, Obs: echogram.Uniform(50, 0, 1, 1)}}
}

func sslParams() ssl.Params {
	p := ssl.DefaultParams()
	p.PulseLengthMs = 1
	p.SampleIntervalM = 1
	p.MinSeparationM = 20
	p.MaxThicknessM = 40
	p.MinDurationPings = 10
	p.MinThicknessM = 5
	return p
}

func TestSSLProcedures(t *testing.T) {
	t.Parallel()
	chans := sslChannels()
	r := NewRegistry()

	sig, err := r.RegisterSignal(SignalParams{FrequencyKHz: 38, Detector: sslParams().Detector()})
	require.NoError(t, err)
	feat, err := r.RegisterFeatures(FeatureParams{FrequencyKHz: 38, SSL: sslParams()})
	require.NoError(t, err)
	med, err := r.RegisterMedian(MedianParams{FrequencyKHz: 38, SSL: sslParams()})
	require.NoError(t, err)

	layer, err := r.Build(chans, sig)
	require.NoError(t, err)
	assert.Equal(t, KindBinary, layer.Kind)
	assert.Equal(t, 1050, layer.Cells.Count())

	layer, err = r.Build(chans, feat)
	require.NoError(t, err)
	assert.Equal(t, KindFlag, layer.Kind)
	assert.Equal(t, 1, layer.Cells.MaxID())
	assert.Equal(t, 1050, layer.Cells.Count())

	layer, err = r.Build(chans, med)
	require.NoError(t, err)
	assert.Equal(t, KindContinuous, layer.Kind)
	rows, cols := layer.Dims()
	assert.Equal(t, 100, rows)
	assert.Equal(t, 50, cols)
	v, ok := layer.Values.At(30, 25)
	assert.True(t, ok)
	assert.Equal(t, -60.0, v)

	// The signal layer can take part in a composite; the flag layer cannot.
	comp, err := r.Compose(chans, feat, []Handle{sig}, PresenceAbsence)
	require.NoError(t, err)
	assert.Equal(t, 1050, comp.Cells.Count())
	_, err = r.Compose(chans, sig, []Handle{feat}, PresenceAbsence)
	assert.ErrorIs(t, err, ErrNonBinaryCompositeInput)
}

func TestSSLProcedures_BlankPulse(t *testing.T) {
	t.Parallel()
	chans := sslChannels()
	for r := 0; r < 5; r++ {
		for c := 0; c < 50; c++ {
			chans[38].Sv.Set(r, c, -55)
		}
	}
	r := NewRegistry()
	feat, err := r.RegisterFeatures(FeatureParams{FrequencyKHz: 38, SSL: sslParams(), BlankPulse: true, PulseMaskValue: -999})
	require.NoError(t, err)
	med, err := r.RegisterMedian(MedianParams{FrequencyKHz: 38, SSL: sslParams(), BlankPulse: true, PulseMaskValue: -999})
	require.NoError(t, err)

	layer, err := r.Build(chans, feat)
	require.NoError(t, err)
	assert.Equal(t, 1, layer.Cells.MaxID())
	assert.Equal(t, 1050, layer.Cells.Count())
	for c := 0; c < 50; c++ {
		assert.Zero(t, layer.Cells.At(2, c))
	}

	layer, err = r.Build(chans, med)
	require.NoError(t, err)
	assert.False(t, layer.Values.Valid(2, 0))
	v, ok := layer.Values.At(30, 0)
	assert.True(t, ok)
	assert.Equal(t, -60.0, v)
}

func TestParams_Validate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ThresholdParams{FrequencyKHz: 38, ThresholdDB: -70}.Validate())
	assert.ErrorIs(t, ThresholdParams{FrequencyKHz: -1}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, PulseParams{}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, SignalParams{FrequencyKHz: 38}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, FeatureParams{FrequencyKHz: 38}.Validate(), ErrInvalidParams)
	assert.NoError(t, MedianParams{FrequencyKHz: 38, SSL: ssl.DefaultParams()}.Validate())
}
