package swipe

import (
	"time"

	"github.com/bastiangx/swipeserve/pkg/keyindex"
	"github.com/charmbracelet/log"
)

// Gesture accumulates the points of one pointer-down to pointer-up swipe.
// It is not safe for concurrent use; one gesture belongs to one touch stream.
type Gesture struct {
	points    []keyindex.Point
	lastTime  time.Duration
	maxPoints int
	active    bool
	ignored   int
}

// NewGesture returns a gesture bounded to maxPoints samples.
func NewGesture(maxPoints int) *Gesture {
	if maxPoints <= 0 {
		maxPoints = MaxPathPoints
	}
	return &Gesture{maxPoints: maxPoints}
}

// Begin starts a new gesture at p, discarding anything left from a previous one.
func (g *Gesture) Begin(p keyindex.Point, t time.Duration) {
	g.points = g.points[:0]
	g.ignored = 0
	g.active = true
	g.lastTime = t
	g.points = append(g.points, p)
}

// Move appends a sample. Samples older than the previous one, samples past the
// point cap, and samples outside an active gesture are ignored.
func (g *Gesture) Move(p keyindex.Point, t time.Duration) bool {
	if !g.active || t < g.lastTime {
		g.ignored++
		return false
	}
	if len(g.points) >= g.maxPoints {
		g.ignored++
		return false
	}
	g.lastTime = t
	g.points = append(g.points, p)
	return true
}

// End finishes the gesture and hands its points to the caller.
func (g *Gesture) End() []keyindex.Point {
	if g.ignored > 0 {
		log.Debugf("Gesture ignored %d samples", g.ignored)
	}
	g.active = false
	out := g.points
	g.points = nil
	return out
}

// Active reports whether a gesture is in progress.
func (g *Gesture) Active() bool { return g.active }

// Len returns the number of retained samples.
func (g *Gesture) Len() int { return len(g.points) }
