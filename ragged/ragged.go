package ragged

import (
	"fmt"

	"github.com/neurlab/tracto/errs"
	"github.com/neurlab/tracto/format"
	"github.com/neurlab/tracto/internal/conv"
	"github.com/neurlab/tracto/streamline"
)

// Scalar is the storage width of point coordinates.
type Scalar interface {
	~float32 | ~float64
}

// Encoding is the flat form of a streamline collection: the concatenated
// point scalars plus per-streamline offsets (cumulative point counts, int64)
// and lengths (point counts, int32).
//
// An Encoding obtained from Encode or New is internally consistent; its
// fields must be treated as read-only.
type Encoding[T Scalar] struct {
	Data    []T
	Offsets []int64
	Lengths []int32

	layout format.Layout
}

// Encode computes the flat encoding of a collection, deriving offsets from
// lengths. The collection is not mutated and shares no memory with the
// result. Streamline point counts are unbounded in the model but int32 in
// the encoding; a streamline too long for its lengths entry is an error,
// never a truncation.
func Encode[T Scalar](c *streamline.Collection) (*Encoding[T], error) {
	data := make([]T, 0, c.TotalPoints()*3)
	offsets := make([]int64, 0, c.Len())
	lengths := make([]int32, 0, c.Len())

	var offset int64
	for i, s := range c.All() {
		length, err := conv.IntToInt32(len(s))
		if err != nil {
			return nil, fmt.Errorf("streamline %d: %w", i, err)
		}
		offsets = append(offsets, offset)
		lengths = append(lengths, length)
		offset += int64(length)
		for _, p := range s {
			data = append(data, T(p[0]), T(p[1]), T(p[2]))
		}
	}

	return &Encoding[T]{
		Data:    data,
		Offsets: offsets,
		Lengths: lengths,
		layout:  format.LayoutFlat,
	}, nil
}

// New builds an Encoding from externally supplied arrays (memory-mapped
// files, archive members) and validates them: the layout must be known, data
// must hold exactly 3 scalars per point, and offsets must agree with lengths
// (Offsets[0] == 0, Offsets[i+1] == Offsets[i]+Lengths[i]).
//
// The arrays are taken over, not copied; for memory-mapped inputs they alias
// the mapping and are only valid while it stays open.
func New[T Scalar](data []T, offsets []int64, lengths []int32, layout format.Layout) (*Encoding[T], error) {
	switch layout {
	case format.LayoutFlat, format.LayoutRowMajorTriples:
	default:
		return nil, fmt.Errorf("%w: unknown layout %d", errs.ErrLayoutMismatch, layout)
	}

	if len(offsets) != len(lengths) {
		return nil, fmt.Errorf("%w: %d offsets vs %d lengths",
			errs.ErrOffsetLengthMismatch, len(offsets), len(lengths))
	}
	if len(data)%3 != 0 {
		return nil, fmt.Errorf("%w: %d scalars is not a whole number of points",
			errs.ErrLayoutMismatch, len(data))
	}

	var total int64
	for i, length := range lengths {
		if length < 0 {
			return nil, fmt.Errorf("%w: negative length %d at %d", errs.ErrOffsetLengthMismatch, length, i)
		}
		if offsets[i] != total {
			return nil, fmt.Errorf("%w: offsets[%d]=%d, expected %d",
				errs.ErrOffsetLengthMismatch, i, offsets[i], total)
		}
		total += int64(length)
	}
	if int64(len(data)) != total*3 {
		return nil, fmt.Errorf("%w: data holds %d points, lengths sum to %d",
			errs.ErrLayoutMismatch, len(data)/3, total)
	}

	return &Encoding[T]{
		Data:    data,
		Offsets: offsets,
		Lengths: lengths,
		layout:  layout,
	}, nil
}

// Count returns the number of encoded streamlines.
func (e *Encoding[T]) Count() int {
	return len(e.Offsets)
}

// TotalPoints returns the summed point count over all encoded streamlines.
func (e *Encoding[T]) TotalPoints() int64 {
	if len(e.Offsets) == 0 {
		return 0
	}

	return e.Offsets[len(e.Offsets)-1] + int64(e.Lengths[len(e.Lengths)-1])
}

// Layout returns how the data array was declared by its source.
func (e *Encoding[T]) Layout() format.Layout {
	return e.layout
}

// Reconstruct rebuilds streamlines from the flat arrays.
//
// A nil indices reconstructs every streamline in storage order. Otherwise
// the result holds exactly the requested streamlines in the order given;
// repeated and reordered indices are honored. An empty non-nil indices
// yields an empty collection.
//
// Any index outside [0, Count()) fails with errs.ErrIndexOutOfRange and no
// partial result.
func (e *Encoding[T]) Reconstruct(indices []int) (*streamline.Collection, error) {
	count := e.Count()

	if indices == nil {
		indices = make([]int, count)
		for i := range indices {
			indices[i] = i
		}
	} else {
		for _, i := range indices {
			if i < 0 || i >= count {
				return nil, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, count)
			}
		}
	}

	streamlines := make([]streamline.Streamline, 0, len(indices))
	for _, i := range indices {
		start := e.Offsets[i] * 3
		length := int(e.Lengths[i])

		s := make(streamline.Streamline, length)
		scalars := e.Data[start : start+int64(length)*3]
		for p := range s {
			s[p] = streamline.Point{
				float64(scalars[p*3]),
				float64(scalars[p*3+1]),
				float64(scalars[p*3+2]),
			}
		}
		streamlines = append(streamlines, s)
	}

	return streamline.NewCollection(streamlines), nil
}
