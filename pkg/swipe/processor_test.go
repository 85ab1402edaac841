package swipe

import (
	"math"
	"testing"
	"time"

	"github.com/bastiangx/swipeserve/pkg/keyindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var topRow = []string{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"}
var homeRow = []string{"a", "s", "d", "f", "g", "h", "j", "k", "l"}

// newTestProcessor lays out two rows of 100x100 keys.
func newTestProcessor() *Processor {
	p := NewProcessor(keyindex.NewIndex(1000, 200, 50), DefaultConfig())
	for i, k := range topRow {
		x := float64(i * 100)
		p.RegisterKeyPosition(k, keyindex.Rect{Left: x, Top: 0, Right: x + 100, Bottom: 100})
	}
	for i, k := range homeRow {
		x := float64(i*100 + 50)
		p.RegisterKeyPosition(k, keyindex.Rect{Left: x, Top: 100, Right: x + 100, Bottom: 200})
	}
	return p
}

// centre returns the centre of a registered key.
func centre(t *testing.T, p *Processor, key string) keyindex.Point {
	t.Helper()
	r, ok := p.Index().Rect(key)
	require.True(t, ok, "key %s not registered", key)
	return keyindex.Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// stroke interpolates steps points between each pair of key centres.
func stroke(t *testing.T, p *Processor, steps int, keys ...string) []keyindex.Point {
	t.Helper()
	var path []keyindex.Point
	for i := 0; i < len(keys)-1; i++ {
		a, b := centre(t, p, keys[i]), centre(t, p, keys[i+1])
		for s := 0; s < steps; s++ {
			f := float64(s) / float64(steps)
			path = append(path, keyindex.Point{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f})
		}
	}
	return append(path, centre(t, p, keys[len(keys)-1]))
}

func TestProcessPathThreeKeys(t *testing.T) {
	p := newTestProcessor()
	// Sparse samples hopping t -> e -> h, with a little wobble on each key.
	tk, ek, hk := centre(t, p, "t"), centre(t, p, "e"), centre(t, p, "h")
	path := []keyindex.Point{
		tk, {X: tk.X + 10, Y: tk.Y},
		ek, {X: ek.X + 10, Y: ek.Y},
		hk,
	}

	assert.Equal(t, "teh", p.ProcessPathToKeySequence(path))
}

func TestProcessPathStraightStroke(t *testing.T) {
	p := newTestProcessor()
	// A straight stroke from t to e passes over r.
	path := stroke(t, p, 12, "t", "e")

	assert.Equal(t, "tre", p.ProcessPathToKeySequence(path))
}

func TestProcessPathCrossesIntermediateKeys(t *testing.T) {
	p := newTestProcessor()
	path := stroke(t, p, 20, "q", "p")

	assert.Equal(t, "qwertyuiop", p.ProcessPathToKeySequence(path))
}

func TestProcessPathTooShort(t *testing.T) {
	p := newTestProcessor()

	assert.Empty(t, p.ProcessPathToKeySequence(nil))
	assert.Empty(t, p.ProcessPathToKeySequence([]keyindex.Point{{X: 10, Y: 10}, {X: 150, Y: 10}}))

	// Three points, but two are invalid.
	assert.Empty(t, p.ProcessPathToKeySequence([]keyindex.Point{
		{X: 10, Y: 10},
		{X: math.NaN(), Y: 10},
		{X: -5, Y: 10},
	}))
}

func TestProcessPathDropsMalformedPoints(t *testing.T) {
	p := newTestProcessor()
	path := stroke(t, p, 10, "w", "e", "r")
	noisy := make([]keyindex.Point, 0, len(path)*2)
	for _, pt := range path {
		noisy = append(noisy, pt, keyindex.Point{X: math.Inf(1), Y: pt.Y}, keyindex.Point{X: pt.X, Y: -1})
	}

	assert.Equal(t, p.ProcessPathToKeySequence(path), p.ProcessPathToKeySequence(noisy))
}

func TestProcessPathIsDeterministic(t *testing.T) {
	p := newTestProcessor()
	path := stroke(t, p, 7, "s", "w", "i", "p", "e")

	first := p.ProcessPathToKeySequence(path)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.ProcessPathToKeySequence(path))
	}
}

func TestProcessPathNoConsecutiveDuplicates(t *testing.T) {
	p := newTestProcessor()
	// Lingering on "e" with jitter, then moving off and back.
	var path []keyindex.Point
	for i := 0; i < 60; i++ {
		path = append(path, keyindex.Point{X: 250 + float64(i%3)*8, Y: 50 + float64(i%2)*8})
	}
	path = append(path, stroke(t, p, 10, "e", "r", "e", "d")...)

	trail := p.ProcessPathToKeySequence(path)
	require.NotEmpty(t, trail)
	for i := 1; i < len(trail); i++ {
		assert.NotEqual(t, trail[i-1], trail[i], "trail %q", trail)
	}
}

func TestProcessPathTruncatesLongPaths(t *testing.T) {
	p := newTestProcessor()
	a := centre(t, p, "q")
	path := make([]keyindex.Point, 0, 10000)
	for i := 0; i < MaxPathPoints; i++ {
		path = append(path, keyindex.Point{X: a.X + float64(i%2)*10, Y: a.Y})
	}
	// Anything past the cap is ignored, so "p" never appears.
	for i := 0; i < 10000-MaxPathPoints; i++ {
		path = append(path, centre(t, p, "p"))
	}

	start := time.Now()
	trail := p.ProcessPathToKeySequence(path)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "q", trail)
}

func TestProcessPathIgnoresPointsOffKeys(t *testing.T) {
	p := newTestProcessor()
	path := stroke(t, p, 10, "a", "s", "d")
	path = append([]keyindex.Point{{X: 5000, Y: 5000}}, path...)
	path = append(path, keyindex.Point{X: 20, Y: 190})

	assert.Equal(t, "asd", p.ProcessPathToKeySequence(path))
}

func TestFilterByVelocity(t *testing.T) {
	pts := []keyindex.Point{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 2, Y: 0},
		{X: 10, Y: 0},
		{X: 11, Y: 0},
	}
	out := filterByVelocity(pts, VelocityThreshold)

	assert.Equal(t, []keyindex.Point{
		{X: 0, Y: 0},
		{X: 2, Y: 0},
		{X: 10, Y: 0},
		{X: 11, Y: 0},
	}, out)
}

func TestClearKeys(t *testing.T) {
	p := newTestProcessor()
	path := stroke(t, p, 10, "t", "e", "h")
	p.ClearKeys()

	assert.Empty(t, p.ProcessPathToKeySequence(path))
}

func TestConfigDefaults(t *testing.T) {
	p := NewProcessor(keyindex.NewIndex(100, 100, 10), Config{})
	assert.Equal(t, DefaultConfig(), p.Config())
}
