// Package ragged implements the flat encoding of streamline collections: one
// contiguous scalar buffer plus parallel offsets and lengths arrays.
//
// # Encoding
//
// Streamline i of a collection contributes Lengths[i] points, i.e.
// 3*Lengths[i] consecutive scalars (x, y, z interleaved), to the Data buffer
// starting at scalar position Offsets[i]*3. Offsets counts points, not
// scalars, and is the running sum of the preceding lengths with
// Offsets[0] == 0:
//
//	streamlines: [[p0 p1] [p2] [p3 p4 p5]]
//	Data:        p0x p0y p0z p1x p1y p1z p2x ... p5z
//	Offsets:     0 2 3
//	Lengths:     2 1 3
//
// The encoding is generic over the scalar width (float32 or float64), so
// memory-mapped float32 files are sliced without a widening pass over the
// whole buffer.
//
// Externally supplied arrays may describe Data as either a flat 1-D scalar
// array or a 2-D array of point rows (format.Layout); both describe the same
// row-major bytes and are resolved once at construction, never re-detected
// on access.
//
// Offsets supplied independently of lengths are validated against them at
// construction and rejected on disagreement, since slicing with inconsistent
// arrays silently reads wrong geometry instead of failing.
package ragged
