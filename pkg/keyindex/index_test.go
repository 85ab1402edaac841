package keyindex

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// qwertyRow lays out ten 100x150 keys starting at the origin.
func qwertyRow(idx *Index) {
	for i, k := range []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"} {
		x := float64(i * 100)
		idx.RegisterKey(k, Rect{Left: x, Top: 0, Right: x + 100, Bottom: 150})
	}
}

func TestFindKeyAtInsideRects(t *testing.T) {
	idx := NewIndex(1000, 450, 64)
	qwertyRow(idx)

	testCases := []struct {
		p    Point
		want string
	}{
		{Point{X: 1, Y: 1}, "q"},
		{Point{X: 150, Y: 75}, "w"},
		{Point{X: 499.5, Y: 149}, "t"},
		{Point{X: 500, Y: 10}, "y"},
		{Point{X: 999, Y: 100}, "p"},
	}
	for _, tc := range testCases {
		got, ok := idx.FindKeyAt(tc.p)
		require.True(t, ok, "point %+v", tc.p)
		assert.Equal(t, tc.want, got, "point %+v", tc.p)
	}
}

func TestFindKeyAtOutsideRects(t *testing.T) {
	idx := NewIndex(1000, 450, 64)
	qwertyRow(idx)

	for _, p := range []Point{
		{X: 50, Y: 200},
		{X: 50, Y: 150},
		{X: 2000, Y: 2000},
		{X: -10, Y: -10},
		{X: math.NaN(), Y: 10},
		{X: 10, Y: math.Inf(1)},
	} {
		_, ok := idx.FindKeyAt(p)
		assert.False(t, ok, "point %+v", p)
	}
}

func TestRegisterKeyIsIdempotent(t *testing.T) {
	once := NewIndex(400, 400, 50)
	twice := NewIndex(400, 400, 50)
	r := Rect{Left: 30, Top: 30, Right: 170, Bottom: 120}

	once.RegisterKey("a", r)
	twice.RegisterKey("a", r)
	twice.RegisterKey("a", r)

	assert.Equal(t, 1, twice.Len())
	for x := 0.0; x < 400; x += 7 {
		for y := 0.0; y < 400; y += 7 {
			k1, ok1 := once.FindKeyAt(Point{X: x, Y: y})
			k2, ok2 := twice.FindKeyAt(Point{X: x, Y: y})
			assert.Equal(t, ok1, ok2)
			assert.Equal(t, k1, k2)
		}
	}
	for _, cell := range twice.cells {
		assert.LessOrEqual(t, len(cell), 1)
	}
}

func TestRegisterKeyOverwriteMovesKey(t *testing.T) {
	idx := NewIndex(400, 400, 50)
	idx.RegisterKey("a", Rect{Left: 0, Top: 0, Right: 40, Bottom: 40})
	idx.RegisterKey("a", Rect{Left: 200, Top: 200, Right: 240, Bottom: 240})

	_, ok := idx.FindKeyAt(Point{X: 10, Y: 10})
	assert.False(t, ok)
	got, ok := idx.FindKeyAt(Point{X: 210, Y: 210})
	assert.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestRegisterKeySpanningCells(t *testing.T) {
	idx := NewIndex(300, 300, 50)
	require.True(t, idx.RegisterKey("space", Rect{Left: 10, Top: 10, Right: 290, Bottom: 60}))

	for _, x := range []float64{11, 99, 149, 201, 289} {
		got, ok := idx.FindKeyAt(Point{X: x, Y: 55})
		require.True(t, ok, "x=%v", x)
		assert.Equal(t, "space", got)
	}
}

func TestRegisterKeyRejectsDegenerateRects(t *testing.T) {
	idx := NewIndex(300, 300, 50)

	assert.False(t, idx.RegisterKey("a", Rect{Left: 10, Top: 10, Right: 10, Bottom: 50}))
	assert.False(t, idx.RegisterKey("b", Rect{Left: 10, Top: 50, Right: 40, Bottom: 20}))
	assert.False(t, idx.RegisterKey("c", Rect{Left: math.NaN(), Top: 0, Right: 40, Bottom: 20}))
	assert.False(t, idx.RegisterKey("", Rect{Left: 0, Top: 0, Right: 40, Bottom: 20}))
	assert.Equal(t, 0, idx.Len())
}

func TestPointsBeyondGridAreClamped(t *testing.T) {
	idx := NewIndex(100, 100, 50)
	// Rect extends past the declared surface; lookups past the edge still resolve.
	idx.RegisterKey("x", Rect{Left: 60, Top: 60, Right: 400, Bottom: 400})

	got, ok := idx.FindKeyAt(Point{X: 350, Y: 350})
	assert.True(t, ok)
	assert.Equal(t, "x", got)
}

func TestHugeCoordinatesStayOnGrid(t *testing.T) {
	idx := NewIndex(1080, 720, 64)
	require.True(t, idx.RegisterKey("space", Rect{Left: 0, Top: 0, Right: 1e300, Bottom: 100}))
	require.True(t, idx.RegisterKey("far", Rect{Left: 1e299, Top: 600, Right: 1e300, Bottom: 700}))

	got, ok := idx.FindKeyAt(Point{X: 500, Y: 50})
	require.True(t, ok)
	assert.Equal(t, "space", got)

	got, ok = idx.FindKeyAt(Point{X: 1e299, Y: 50})
	require.True(t, ok)
	assert.Equal(t, "space", got)

	got, ok = idx.FindKeyAt(Point{X: 5e299, Y: 650})
	require.True(t, ok)
	assert.Equal(t, "far", got)

	_, ok = idx.FindKeyAt(Point{X: -1e300, Y: 50})
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	idx := NewIndex(1000, 450, 64)
	qwertyRow(idx)
	assert.Equal(t, []string{"e", "i", "o", "p", "q", "r", "t", "u", "w", "y"}, idx.Keys())
	idx.Clear()

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Keys())
	_, ok := idx.FindKeyAt(Point{X: 150, Y: 75})
	assert.False(t, ok)
}

func TestConcurrentRegisterAndFind(t *testing.T) {
	idx := NewIndex(1000, 450, 64)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			qwertyRow(idx)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			idx.FindKeyAt(Point{X: float64(i * 5 % 1000), Y: 75})
		}
	}()
	wg.Wait()

	assert.Equal(t, 10, idx.Len())
}
