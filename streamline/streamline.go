package streamline

import (
	"iter"
	"math"
)

// Point is a 3D coordinate (x, y, z).
type Point [3]float64

// Streamline is an ordered sequence of 3D points representing one
// reconstructed fiber path. It is immutable by convention once added to a
// Collection; its length is unbounded and varies per streamline.
type Streamline []Point

// NumPoints returns the number of points of the streamline.
func (s Streamline) NumPoints() int {
	return len(s)
}

// ApproxEqual reports whether two streamlines are element-wise equal within
// tol, e.g. after a round trip through float32 storage.
func (s Streamline) ApproxEqual(other Streamline, tol float64) bool {
	if len(s) != len(other) {
		return false
	}
	for i, p := range s {
		for axis := range 3 {
			if math.Abs(p[axis]-other[i][axis]) > tol {
				return false
			}
		}
	}

	return true
}

// Collection is an ordered sequence of streamlines. Duplicate geometries are
// permitted. It optionally carries named attribute tables: one scalar per
// streamline (dps) or one scalar per point (dpp).
type Collection struct {
	streamlines []Streamline
	totalPoints int

	perStreamline map[string][]float64
	perPoint      map[string][]float64
}

// NewCollection creates a collection over the given streamlines.
// The slice is taken over by the collection; callers must not mutate it or
// its streamlines afterwards.
func NewCollection(streamlines []Streamline) *Collection {
	total := 0
	for _, s := range streamlines {
		total += len(s)
	}

	return &Collection{
		streamlines: streamlines,
		totalPoints: total,
	}
}

// Len returns the number of streamlines.
func (c *Collection) Len() int {
	return len(c.streamlines)
}

// TotalPoints returns the summed point count over all streamlines.
func (c *Collection) TotalPoints() int {
	return c.totalPoints
}

// At returns the streamline at index i. It panics if i is out of range, like
// a slice access.
func (c *Collection) At(i int) Streamline {
	return c.streamlines[i]
}

// All iterates over the streamlines in collection order.
func (c *Collection) All() iter.Seq2[int, Streamline] {
	return func(yield func(int, Streamline) bool) {
		for i, s := range c.streamlines {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Chunks yields successive chunks of at most n streamlines, in collection
// order. It yields nothing for an empty collection and panics if n <= 0.
// Chunks share backing storage with the collection.
func (c *Collection) Chunks(n int) iter.Seq[[]Streamline] {
	if n <= 0 {
		panic("streamline: chunk size must be positive")
	}

	return func(yield func([]Streamline) bool) {
		for start := 0; start < len(c.streamlines); start += n {
			end := min(start+n, len(c.streamlines))
			if !yield(c.streamlines[start:end]) {
				return
			}
		}
	}
}

// ApproxEqual reports whether two collections hold element-wise equal
// streamlines within tol. Attribute tables are not compared.
func (c *Collection) ApproxEqual(other *Collection, tol float64) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i, s := range c.streamlines {
		if !s.ApproxEqual(other.streamlines[i], tol) {
			return false
		}
	}

	return true
}
