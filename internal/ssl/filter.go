package ssl

import "github.com/banshee-data/echomask/internal/echogram"

// RowFilter applies consensus smoothing along each row (the ping axis).
// Every run of window contiguous pings whose signal fraction exceeds
// threshold, or which is entirely signal, is promoted to all-signal; a
// pixel is signal in the output if any promoted window covers it.
// threshold 0.5 is a strict majority and 1.0 is unanimity.
func RowFilter(m *echogram.Mask, window int, threshold float64) *echogram.Mask {
	out := echogram.NewMask(m.Rows, m.Cols)
	line := make([]int, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			line[c] = m.At(r, c)
		}
		res := consensus(line, window, threshold)
		for c, v := range res {
			out.Set(r, c, v)
		}
	}
	return out
}

// ColumnFilter is RowFilter along each column (the depth axis).
func ColumnFilter(m *echogram.Mask, window int, threshold float64) *echogram.Mask {
	out := echogram.NewMask(m.Rows, m.Cols)
	line := make([]int, m.Rows)
	for c := 0; c < m.Cols; c++ {
		for r := 0; r < m.Rows; r++ {
			line[r] = m.At(r, c)
		}
		res := consensus(line, window, threshold)
		for r, v := range res {
			out.Set(r, c, v)
		}
	}
	return out
}

// consensus runs the sliding-window vote over one line. Non-zero input
// cells count as signal; the output is binary.
func consensus(line []int, window int, threshold float64) []int {
	n := len(line)
	out := make([]int, n)
	if n == 0 {
		return out
	}
	w := min(max(window, 1), n)

	prefix := make([]int, n+1)
	for i, v := range line {
		prefix[i+1] = prefix[i]
		if v != 0 {
			prefix[i+1]++
		}
	}

	cover := make([]int, n+1)
	for s := 0; s+w <= n; s++ {
		count := prefix[s+w] - prefix[s]
		if count == w || float64(count)/float64(w) > threshold {
			cover[s]++
			cover[s+w]--
		}
	}

	running := 0
	for i := 0; i < n; i++ {
		running += cover[i]
		if running > 0 {
			out[i] = 1
		}
	}
	return out
}

// RemoveNoise clears signal wherever keep is 0, such as the transmit pulse
// rows of a pulse mask. keep must have the shape of signal.
func RemoveNoise(signal, keep *echogram.Mask) (*echogram.Mask, error) {
	if !signal.SameShape(keep) {
		return nil, ErrShapeMismatch
	}
	out := signal.Clone()
	for i, k := range keep.Cells {
		if k == 0 {
			out.Cells[i] = 0
		}
	}
	return out, nil
}
