package echogram

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyGrid is returned when a grid would have zero rows or columns.
var ErrEmptyGrid = errors.New("echogram: grid has no rows or columns")

// Grid is a dense rows×cols array of backscatter values (dB re 1 m^-1).
// Cells without data are flagged through the validity mask rather than a
// magic number, so they can never leak into statistics.
type Grid struct {
	values *mat.Dense
	valid  []bool // row-major, len = rows*cols
}

// NewGrid returns a rows×cols grid of valid zero values.
// It panics if rows or cols is not positive, matching mat.NewDense.
func NewGrid(rows, cols int) *Grid {
	valid := make([]bool, rows*cols)
	for i := range valid {
		valid[i] = true
	}
	return &Grid{values: mat.NewDense(rows, cols, nil), valid: valid}
}

// NewGridFill returns a rows×cols grid with every cell valid and set to v.
func NewGridFill(rows, cols int, v float64) *Grid {
	g := NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.values.Set(r, c, v)
		}
	}
	return g
}

// FromRows builds a grid from row slices. Cells equal to noData, and NaN
// cells, are marked invalid. All rows must have the same length.
func FromRows(rows [][]float64, noData float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	cols := len(rows[0])
	g := NewGrid(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("echogram: row %d has %d columns, want %d", r, len(row), cols)
		}
		for c, v := range row {
			if v == noData || math.IsNaN(v) {
				g.Invalidate(r, c)
				continue
			}
			g.values.Set(r, c, v)
		}
	}
	return g, nil
}

// Dims returns the number of rows (depth samples) and columns (pings).
func (g *Grid) Dims() (rows, cols int) { return g.values.Dims() }

func (g *Grid) idx(r, c int) int {
	_, cols := g.values.Dims()
	return r*cols + c
}

// At returns the value at (r, c) and whether the cell holds data.
func (g *Grid) At(r, c int) (float64, bool) {
	return g.values.At(r, c), g.valid[g.idx(r, c)]
}

// Value returns the raw stored value at (r, c) regardless of validity.
func (g *Grid) Value(r, c int) float64 { return g.values.At(r, c) }

// Valid reports whether (r, c) holds data.
func (g *Grid) Valid(r, c int) bool { return g.valid[g.idx(r, c)] }

// Set stores v at (r, c) and marks the cell valid.
func (g *Grid) Set(r, c int, v float64) {
	g.values.Set(r, c, v)
	g.valid[g.idx(r, c)] = true
}

// Invalidate marks (r, c) as holding no data. The stored value is zeroed.
func (g *Grid) Invalidate(r, c int) {
	g.values.Set(r, c, 0)
	g.valid[g.idx(r, c)] = false
}

// ValidCount returns the number of cells holding data.
func (g *Grid) ValidCount() int {
	n := 0
	for _, ok := range g.valid {
		if ok {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{values: mat.DenseCopyOf(g.values), valid: make([]bool, len(g.valid))}
	copy(out.valid, g.valid)
	return out
}

// WithFloor returns a copy in which every valid cell at or below floor is
// marked invalid. Used to keep the noise floor out of per-feature statistics.
func (g *Grid) WithFloor(floor float64) *Grid {
	out := g.Clone()
	rows, cols := out.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if v, ok := out.At(r, c); ok && v <= floor {
				out.Invalidate(r, c)
			}
		}
	}
	return out
}

// ToRows returns the values as row slices, writing noData into invalid cells.
func (g *Grid) ToRows(noData float64) [][]float64 {
	rows, cols := g.Dims()
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			if v, ok := g.At(r, c); ok {
				out[r][c] = v
			} else {
				out[r][c] = noData
			}
		}
	}
	return out
}
