package echogram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// ErrUnknownFrequency is returned when a provider has no channel for the
// requested frequency.
var ErrUnknownFrequency = errors.New("echogram: unknown frequency")

// Channel is the Sv grid and observation parameters of one frequency.
type Channel struct {
	Sv  *Grid
	Obs ObsParams
}

// Validate checks that the observation parameters cover every ping.
func (ch *Channel) Validate() error {
	if ch.Sv == nil {
		return ErrEmptyGrid
	}
	_, cols := ch.Sv.Dims()
	return ch.Obs.Validate(cols)
}

// Provider gives read-only access to per-frequency channels.
type Provider interface {
	Channel(freqKHz float64) (*Channel, error)
}

// Channels is an in-memory Provider keyed by frequency in kHz.
type Channels map[float64]*Channel

// Channel implements Provider.
func (cs Channels) Channel(freqKHz float64) (*Channel, error) {
	ch, ok := cs[freqKHz]
	if !ok {
		return nil, fmt.Errorf("%w: %g kHz", ErrUnknownFrequency, freqKHz)
	}
	return ch, nil
}

// Frequencies returns the available frequencies in ascending order.
func (cs Channels) Frequencies() []float64 {
	out := make([]float64, 0, len(cs))
	for f := range cs {
		out = append(out, f)
	}
	sort.Float64s(out)
	return out
}

// channelJSON is the interchange form used by the command-line tools.
// Missing cells are null in sv. A channel may also declare a no_data
// sentinel; without one every number in sv is data, including a -999
// noise floor.
type channelJSON struct {
	FrequencyKHz   float64      `json:"frequency_khz"`
	NoData         *float64     `json:"no_data,omitempty"`
	Sv             [][]*float64 `json:"sv"`
	StartDepth     []float64    `json:"start_depth"`
	SampleInterval []float64    `json:"sample_interval"`
	PulseLength    []float64    `json:"pulse_length"`
}

type channelsFile struct {
	Channels []channelJSON `json:"channels"`
}

func (cj channelJSON) grid() (*Grid, error) {
	noData := math.NaN()
	if cj.NoData != nil {
		noData = *cj.NoData
	}
	rows := make([][]float64, len(cj.Sv))
	for r, row := range cj.Sv {
		rows[r] = make([]float64, len(row))
		for c, v := range row {
			if v == nil {
				rows[r][c] = math.NaN()
				continue
			}
			rows[r][c] = *v
		}
	}
	return FromRows(rows, noData)
}

// ReadChannelsJSON decodes channels from r. Null cells, and cells equal to
// a declared no_data sentinel, become invalid.
func ReadChannelsJSON(r io.Reader) (Channels, error) {
	var f channelsFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse channels JSON: %w", err)
	}
	out := make(Channels, len(f.Channels))
	for _, cj := range f.Channels {
		g, err := cj.grid()
		if err != nil {
			return nil, fmt.Errorf("channel %g kHz: %w", cj.FrequencyKHz, err)
		}
		ch := &Channel{Sv: g, Obs: ObsParams{
			StartDepth:     cj.StartDepth,
			SampleInterval: cj.SampleInterval,
			PulseLength:    cj.PulseLength,
		}}
		if err := ch.Validate(); err != nil {
			return nil, fmt.Errorf("channel %g kHz: %w", cj.FrequencyKHz, err)
		}
		if _, dup := out[cj.FrequencyKHz]; dup {
			return nil, fmt.Errorf("duplicate channel %g kHz", cj.FrequencyKHz)
		}
		out[cj.FrequencyKHz] = ch
	}
	return out, nil
}

// LoadChannelsFile reads a channels JSON file from disk.
func LoadChannelsFile(path string) (Channels, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open channels file: %w", err)
	}
	defer f.Close()
	return ReadChannelsJSON(f)
}

// WriteChannelsJSON encodes channels to w with invalid cells as null, so
// every valid value survives a round trip.
func WriteChannelsJSON(w io.Writer, cs Channels) error {
	var f channelsFile
	for _, freq := range cs.Frequencies() {
		ch := cs[freq]
		rows, cols := ch.Sv.Dims()
		sv := make([][]*float64, rows)
		for r := range sv {
			sv[r] = make([]*float64, cols)
			for c := range sv[r] {
				if v, ok := ch.Sv.At(r, c); ok {
					sv[r][c] = &v
				}
			}
		}
		f.Channels = append(f.Channels, channelJSON{
			FrequencyKHz:   freq,
			Sv:             sv,
			StartDepth:     ch.Obs.StartDepth,
			SampleInterval: ch.Obs.SampleInterval,
			PulseLength:    ch.Obs.PulseLength,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}
