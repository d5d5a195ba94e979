package echogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows_MarksNoDataInvalid(t *testing.T) {
	g, err := FromRows([][]float64{
		{-70, -999, -65},
		{math.NaN(), -80, -999},
	}, -999)
	require.NoError(t, err)

	rows, cols := g.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3, g.ValidCount())

	v, ok := g.At(0, 0)
	assert.True(t, ok)
	assert.Equal(t, -70.0, v)

	_, ok = g.At(0, 1)
	assert.False(t, ok)
	assert.False(t, g.Valid(1, 0))
	assert.False(t, g.Valid(1, 2))
}

func TestFromRows_Errors(t *testing.T) {
	_, err := FromRows(nil, -999)
	assert.ErrorIs(t, err, ErrEmptyGrid)

	_, err = FromRows([][]float64{{1, 2}, {3}}, -999)
	assert.Error(t, err)
}

func TestGrid_CloneIsIndependent(t *testing.T) {
	g := NewGridFill(2, 2, -60)
	c := g.Clone()
	c.Set(0, 0, -10)
	c.Invalidate(1, 1)

	assert.Equal(t, -60.0, g.Value(0, 0))
	assert.True(t, g.Valid(1, 1))
	assert.Equal(t, -10.0, c.Value(0, 0))
	assert.False(t, c.Valid(1, 1))
}

func TestGrid_WithFloor(t *testing.T) {
	g, err := FromRows([][]float64{{-999, -60}, {-90, -91}}, math.Inf(-1))
	require.NoError(t, err)

	f := g.WithFloor(-90)
	assert.False(t, f.Valid(0, 0))
	assert.True(t, f.Valid(0, 1))
	assert.False(t, f.Valid(1, 0), "cells equal to the floor are no data")
	assert.False(t, f.Valid(1, 1))
	assert.Equal(t, 4, g.ValidCount(), "source grid is untouched")
}

func TestGrid_ToRowsRoundTrip(t *testing.T) {
	in := [][]float64{{-70, -999}, {-65, -60}}
	g, err := FromRows(in, -999)
	require.NoError(t, err)
	assert.Equal(t, in, g.ToRows(-999))
}

func TestMask_Helpers(t *testing.T) {
	m := MaskFromRows([][]int{
		{0, 2, 0},
		{3, 0, 1},
	})
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 3, m.Cols)
	assert.Equal(t, 3, m.At(1, 0))
	assert.Equal(t, 3, m.Count())
	assert.Equal(t, 3, m.MaxID())
	assert.Equal(t, [][]int{{0, 1, 0}, {1, 0, 1}}, m.Binarize().ToRows())

	c := m.Clone()
	c.Set(0, 0, 9)
	assert.Equal(t, 0, m.At(0, 0))
	assert.True(t, m.SameShape(c))
	assert.False(t, m.SameShape(NewMask(3, 2)))
}
