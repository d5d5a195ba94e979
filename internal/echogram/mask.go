package echogram

// Mask is a rows×cols grid of integer cells, row-major. Binary masks hold
// 0/1 (1 = classified positive); flag masks hold 0 for background and dense
// positive feature identifiers.
type Mask struct {
	Rows  int
	Cols  int
	Cells []int
}

// NewMask returns a zeroed rows×cols mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Cells: make([]int, rows*cols)}
}

// MaskFromRows builds a mask from row slices; all rows must share a length.
func MaskFromRows(rows [][]int) *Mask {
	if len(rows) == 0 {
		return NewMask(0, 0)
	}
	m := NewMask(len(rows), len(rows[0]))
	for r, row := range rows {
		copy(m.Cells[r*m.Cols:(r+1)*m.Cols], row)
	}
	return m
}

// Idx returns the flat index of (r, c).
func (m *Mask) Idx(r, c int) int { return r*m.Cols + c }

// At returns the cell at (r, c).
func (m *Mask) At(r, c int) int { return m.Cells[r*m.Cols+c] }

// Set stores v at (r, c).
func (m *Mask) Set(r, c, v int) { m.Cells[r*m.Cols+c] = v }

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{Rows: m.Rows, Cols: m.Cols, Cells: make([]int, len(m.Cells))}
	copy(out.Cells, m.Cells)
	return out
}

// Binarize returns a copy with every non-zero cell set to 1.
func (m *Mask) Binarize() *Mask {
	out := NewMask(m.Rows, m.Cols)
	for i, v := range m.Cells {
		if v != 0 {
			out.Cells[i] = 1
		}
	}
	return out
}

// Count returns the number of non-zero cells.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Cells {
		if v != 0 {
			n++
		}
	}
	return n
}

// MaxID returns the largest cell value, or 0 for an empty mask.
func (m *Mask) MaxID() int {
	max := 0
	for _, v := range m.Cells {
		if v > max {
			max = v
		}
	}
	return max
}

// SameShape reports whether o has the same dimensions as m.
func (m *Mask) SameShape(o *Mask) bool {
	return o != nil && m.Rows == o.Rows && m.Cols == o.Cols
}

// ToRows returns the cells as row slices.
func (m *Mask) ToRows() [][]int {
	out := make([][]int, m.Rows)
	for r := range out {
		out[r] = make([]int, m.Cols)
		copy(out[r], m.Cells[r*m.Cols:(r+1)*m.Cols])
	}
	return out
}
