package mask

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/echomask/internal/echogram"
	"github.com/banshee-data/echomask/internal/monitoring"
)

// MaxBitwiseCandidates is the largest candidate list a bitwise composite can
// pack into one int64 cell without reaching the sign bit.
const MaxBitwiseCandidates = 62

// Mode selects how Compose combines candidate masks.
type Mode int

const (
	// PresenceAbsence marks a cell 1 when any candidate marks it.
	PresenceAbsence Mode = iota
	// Bitwise packs candidate bits into one integer per cell, first
	// candidate most significant.
	Bitwise
)

func (m Mode) String() string {
	switch m {
	case PresenceAbsence:
		return "pa"
	case Bitwise:
		return "bitwise"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts "pa" (or "presence_absence") and "bitwise" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pa", "presence_absence", "presence-absence":
		return PresenceAbsence, nil
	case "bitwise":
		return Bitwise, nil
	}
	return 0, fmt.Errorf("mask: unknown composite mode %q", s)
}

// Composite is the output of Compose.
type Composite struct {
	Mode    Mode
	Kind    Kind // KindBinary for PresenceAbsence, KindFlag for Bitwise
	Cells   *echogram.Mask
	Obs     echogram.ObsParams // copied from the reference
	Bits    int                // number of candidates, i.e. bit planes
	Skipped []Handle           // candidates with no aligned columns
}

// Plane returns bit plane i (candidate i) of a bitwise composite, or the
// whole mask for a presence/absence composite.
func (c *Composite) Plane(i int) *echogram.Mask {
	if c.Mode == PresenceAbsence {
		return c.Cells.Clone()
	}
	out := echogram.NewMask(c.Cells.Rows, c.Cells.Cols)
	shift := c.Bits - 1 - i
	for j, v := range c.Cells.Cells {
		out.Cells[j] = (v >> shift) & 1
	}
	return out
}

// Compose builds ref and every candidate against p and combines the
// candidates on the reference grid.
//
// Candidates must be binary definitions. Each is aligned to the reference
// with AlignColumns and copied into the overlapping rows of the aligned
// columns; all other cells contribute 0. A candidate with no aligned
// columns is logged, listed in Skipped and contributes nothing. In Bitwise
// mode a skipped candidate still occupies its bit, so the bit order always
// matches the order of candidates.
func (r *Registry) Compose(p echogram.Provider, ref Handle, candidates []Handle, mode Mode) (*Composite, error) {
	for _, h := range candidates {
		if h.Kind != KindBinary {
			return nil, fmt.Errorf("%w: %s", ErrNonBinaryCompositeInput, h)
		}
	}
	switch mode {
	case PresenceAbsence:
	case Bitwise:
		if len(candidates) > MaxBitwiseCandidates {
			return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(candidates), MaxBitwiseCandidates)
		}
	default:
		return nil, fmt.Errorf("mask: unknown composite mode %v", mode)
	}

	refLayer, err := r.Build(p, ref)
	if err != nil {
		return nil, err
	}
	rows, cols := refLayer.Dims()

	planes := make([]*echogram.Mask, len(candidates))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, h := range candidates {
		eg.Go(func() error {
			layer, err := r.Build(p, h)
			if err != nil {
				return err
			}
			aligned := AlignColumns(refLayer.Obs, layer.Obs)
			if len(aligned) == 0 {
				monitoring.Warnf("[Composite] %s has no columns matching reference %s, skipping", h, ref)
				return nil
			}
			planes[i] = place(layer.Cells, rows, cols, aligned)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := &Composite{
		Mode:  mode,
		Kind:  KindBinary,
		Cells: echogram.NewMask(rows, cols),
		Obs:   refLayer.Obs.Clone(),
		Bits:  len(candidates),
	}
	if mode == Bitwise {
		out.Kind = KindFlag
	}
	for i, plane := range planes {
		if plane == nil {
			out.Skipped = append(out.Skipped, candidates[i])
			continue
		}
		shift := len(candidates) - 1 - i
		for j, v := range plane.Cells {
			if v == 0 {
				continue
			}
			if mode == PresenceAbsence {
				out.Cells.Cells[j] = 1
			} else {
				out.Cells.Cells[j] |= 1 << shift
			}
		}
	}

	monitoring.Logf("[Composite] %s from %d candidates on %s (%dx%d), %d skipped",
		mode, len(candidates), ref, rows, cols, len(out.Skipped))
	return out, nil
}

// place copies the aligned columns of src into a zeroed rows×cols plane,
// truncating or zero-filling rows. Non-zero cells become 1.
func place(src *echogram.Mask, rows, cols int, aligned []int) *echogram.Mask {
	plane := echogram.NewMask(rows, cols)
	n := min(rows, src.Rows)
	for _, c := range aligned {
		if c >= cols || c >= src.Cols {
			continue
		}
		for r := 0; r < n; r++ {
			if src.At(r, c) != 0 {
				plane.Set(r, c, 1)
			}
		}
	}
	return plane
}

// DecodeBits returns the n binary digits of value, most significant first.
func DecodeBits(value, n int) []int {
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = (value >> (n - 1 - i)) & 1
	}
	return out
}

// MergeBinary packs binary masks into one integer mask, first mask most
// significant. The first mask fixes the shape; other masks are truncated or
// zero-filled to it without any column alignment.
func MergeBinary(masks ...*echogram.Mask) (*echogram.Mask, error) {
	if len(masks) == 0 {
		return nil, fmt.Errorf("%w: no masks to merge", ErrInvalidParams)
	}
	if len(masks) > MaxBitwiseCandidates {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(masks), MaxBitwiseCandidates)
	}
	rows, cols := masks[0].Rows, masks[0].Cols
	out := echogram.NewMask(rows, cols)
	for i, m := range masks {
		shift := len(masks) - 1 - i
		for r := 0; r < min(rows, m.Rows); r++ {
			for c := 0; c < min(cols, m.Cols); c++ {
				switch m.At(r, c) {
				case 0:
				case 1:
					out.Cells[out.Idx(r, c)] |= 1 << shift
				default:
					return nil, fmt.Errorf("%w: mask %d has value %d at (%d,%d)",
						ErrNonBinaryCompositeInput, i, m.At(r, c), r, c)
				}
			}
		}
	}
	return out, nil
}
