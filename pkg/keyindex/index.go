/*
Package keyindex resolves screen coordinates to keyboard keys.

Keys are registered with their bounding rectangle and bucketed into a uniform
grid sized to the keyboard surface. A lookup computes the single cell holding
the point and scans the handful of keys registered there, so resolution stays
O(1) on average no matter how many keys a layout has.

A key whose rectangle crosses cell boundaries is registered in every cell it
overlaps, not only the cell holding its centre.

	idx := keyindex.NewIndex(1080, 720, 64)
	idx.RegisterKey("q", keyindex.Rect{Left: 0, Top: 0, Right: 108, Bottom: 180})
	key, ok := idx.FindKeyAt(keyindex.Point{X: 40, Y: 90})

The index is rebuilt by the caller on every layout or geometry change via Clear.
*/
package keyindex

import (
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Point is a 2D coordinate in pixel-equivalent units.
type Point struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

// Rect is an axis aligned key rectangle.
// Left and Top are inclusive, Right and Bottom exclusive.
type Rect struct {
	Left   float64 `msgpack:"l"`
	Top    float64 `msgpack:"t"`
	Right  float64 `msgpack:"r"`
	Bottom float64 `msgpack:"b"`
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Top && p.Y < r.Bottom
}

// Valid reports whether r has finite coordinates and a positive area.
func (r Rect) Valid() bool {
	if !finite(r.Left) || !finite(r.Top) || !finite(r.Right) || !finite(r.Bottom) {
		return false
	}
	return r.Width() > 0 && r.Height() > 0
}

// Finite reports whether both coordinates of p are finite numbers.
func (p Point) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

const defaultCellSize = 64.0

// Index is a uniform grid of key registrations.
type Index struct {
	cellWidth  float64
	cellHeight float64
	cols       int
	rows       int
	cells      [][]string
	keys       map[string]Rect
	mu         sync.RWMutex
}

// NewIndex creates a grid covering a width x height keyboard surface with square cells.
// Non-positive dimensions fall back to a single row or column of cells.
func NewIndex(width, height, cellSize float64) *Index {
	if !finite(cellSize) || cellSize <= 0 {
		cellSize = defaultCellSize
	}
	cols := gridSpan(width, cellSize)
	rows := gridSpan(height, cellSize)

	return &Index{
		cellWidth:  cellSize,
		cellHeight: cellSize,
		cols:       cols,
		rows:       rows,
		cells:      make([][]string, cols*rows),
		keys:       make(map[string]Rect),
	}
}

func gridSpan(extent, cellSize float64) int {
	if !finite(extent) || extent <= 0 {
		return 1
	}
	return int(math.Ceil(extent / cellSize))
}

// RegisterKey records or overwrites the rectangle for id.
// Rectangles with non-positive width or height are rejected and false is returned.
func (idx *Index) RegisterKey(id string, rect Rect) bool {
	if id == "" || !rect.Valid() {
		log.Debugf("Rejected key registration id=%q rect=%+v", id, rect)
		return false
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if old, exists := idx.keys[id]; exists {
		idx.unlink(id, old)
	}
	idx.keys[id] = rect

	c0, r0 := idx.cellOf(rect.Left, rect.Top)
	// Right/Bottom are exclusive, so a rect ending exactly on a cell edge stays out of the next cell.
	c1, r1 := idx.cellOf(math.Nextafter(rect.Right, math.Inf(-1)), math.Nextafter(rect.Bottom, math.Inf(-1)))
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			i := row*idx.cols + col
			idx.cells[i] = append(idx.cells[i], id)
		}
	}
	return true
}

// unlink removes id from every cell old overlaps. Caller holds the write lock.
func (idx *Index) unlink(id string, old Rect) {
	c0, r0 := idx.cellOf(old.Left, old.Top)
	c1, r1 := idx.cellOf(math.Nextafter(old.Right, math.Inf(-1)), math.Nextafter(old.Bottom, math.Inf(-1)))
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			i := row*idx.cols + col
			cell := idx.cells[i]
			for j, k := range cell {
				if k == id {
					idx.cells[i] = append(cell[:j], cell[j+1:]...)
					break
				}
			}
		}
	}
}

// FindKeyAt returns the first registered key whose rectangle contains p.
func (idx *Index) FindKeyAt(p Point) (string, bool) {
	if !p.Finite() {
		return "", false
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	col, row := idx.cellOf(p.X, p.Y)
	for _, id := range idx.cells[row*idx.cols+col] {
		if idx.keys[id].Contains(p) {
			return id, true
		}
	}
	return "", false
}

// cellOf maps a coordinate to its grid cell, clamped to the grid bounds.
func (idx *Index) cellOf(x, y float64) (col, row int) {
	return cellIndex(x, idx.cellWidth, idx.cols), cellIndex(y, idx.cellHeight, idx.rows)
}

// cellIndex clamps in float space so coordinates past the int range
// still land in the edge cell.
func cellIndex(v, size float64, n int) int {
	c := math.Floor(v / size)
	if c >= float64(n-1) {
		return n - 1
	}
	if c < 0 {
		return 0
	}
	return int(c)
}

// Clear drops every registration. Called on layout change.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i := range idx.cells {
		idx.cells[i] = nil
	}
	clear(idx.keys)
}

// Len returns the number of registered keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.keys)
}

// Rect returns the registered rectangle for id.
func (idx *Index) Rect(id string) (Rect, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	r, ok := idx.keys[id]
	return r, ok
}

// Keys returns the registered key ids, sorted.
func (idx *Index) Keys() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Sorted(maps.Keys(idx.keys))
}
