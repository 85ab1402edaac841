// Package swipe reduces raw touch paths to key trails.
//
// A trail is the ordered list of keys a finger crossed during one gesture,
// with jitter removed and consecutive repeats collapsed. It is meant to be fed
// to the word predictor as a literal prefix.
package swipe

import (
	"math"
	"strings"

	"github.com/bastiangx/swipeserve/pkg/keyindex"
	"github.com/charmbracelet/log"
)

const (
	// MinPathLength is the fewest valid points a path needs before it is decoded.
	MinPathLength = 3
	// MaxPathPoints bounds how many points of a single gesture are processed.
	MaxPathPoints = 500
	// VelocityThreshold is the summed segment length a 3-point window must exceed
	// for its middle point to survive filtering.
	VelocityThreshold = 5.0
)

// Config tunes the processor. Zero fields take the package defaults.
type Config struct {
	MinPathLength     int
	MaxPathPoints     int
	VelocityThreshold float64
}

// DefaultConfig returns the processor defaults.
func DefaultConfig() Config {
	return Config{
		MinPathLength:     MinPathLength,
		MaxPathPoints:     MaxPathPoints,
		VelocityThreshold: VelocityThreshold,
	}
}

func (c Config) withDefaults() Config {
	if c.MinPathLength <= 0 {
		c.MinPathLength = MinPathLength
	}
	if c.MaxPathPoints <= 0 {
		c.MaxPathPoints = MaxPathPoints
	}
	if c.VelocityThreshold <= 0 || math.IsNaN(c.VelocityThreshold) {
		c.VelocityThreshold = VelocityThreshold
	}
	return c
}

// Processor turns swipe paths into key trails using a spatial key index.
// It is meant to run synchronously on the goroutine receiving touch events.
type Processor struct {
	index *keyindex.Index
	cfg   Config
}

// NewProcessor creates a processor over index.
func NewProcessor(index *keyindex.Index, cfg Config) *Processor {
	return &Processor{
		index: index,
		cfg:   cfg.withDefaults(),
	}
}

// Config returns the active processor settings.
func (p *Processor) Config() Config { return p.cfg }

// Index returns the underlying key index.
func (p *Processor) Index() *keyindex.Index { return p.index }

// RegisterKeyPosition records the rectangle of a key on the current layout.
func (p *Processor) RegisterKeyPosition(key string, rect keyindex.Rect) bool {
	return p.index.RegisterKey(key, rect)
}

// ClearKeys drops all key registrations.
func (p *Processor) ClearKeys() {
	p.index.Clear()
}

// ProcessPathToKeySequence returns the key trail crossed by path, or "" when
// the path is too short or touches no keys. Invalid points are dropped.
func (p *Processor) ProcessPathToKeySequence(path []keyindex.Point) string {
	valid := make([]keyindex.Point, 0, min(len(path), p.cfg.MaxPathPoints))
	dropped := 0
	for _, pt := range path {
		if !pt.Finite() || pt.X < 0 || pt.Y < 0 {
			dropped++
			continue
		}
		valid = append(valid, pt)
	}
	if dropped > 0 {
		log.Debugf("Dropped %d malformed swipe points", dropped)
	}

	if len(valid) < p.cfg.MinPathLength {
		return ""
	}
	if len(valid) > p.cfg.MaxPathPoints {
		log.Debugf("Truncating swipe path from %d to %d points", len(valid), p.cfg.MaxPathPoints)
		valid = valid[:p.cfg.MaxPathPoints]
	}

	filtered := filterByVelocity(valid, p.cfg.VelocityThreshold)

	var trail strings.Builder
	last := ""
	for _, pt := range filtered {
		key, ok := p.index.FindKeyAt(pt)
		if !ok || key == last {
			continue
		}
		trail.WriteString(key)
		last = key
	}
	return trail.String()
}

// filterByVelocity keeps the endpoints and every interior point whose
// neighbouring segments sum to more than threshold.
func filterByVelocity(points []keyindex.Point, threshold float64) []keyindex.Point {
	if len(points) <= 2 {
		return points
	}
	out := make([]keyindex.Point, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		d := distance(points[i-1], points[i]) + distance(points[i], points[i+1])
		if d > threshold {
			out = append(out, points[i])
		}
	}
	return append(out, points[len(points)-1])
}

func distance(a, b keyindex.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
