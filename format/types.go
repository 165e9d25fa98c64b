// Package format defines the shared enums of the on-disk surfaces: storage
// dtype, member compression, and the declared shape of a data array.
package format

type (
	DType           uint8
	CompressionType uint8
	Layout          uint8
)

const (
	DTypeFloat32 DType = 0x1 // DTypeFloat32 stores point coordinates as 32-bit floats.
	DTypeFloat64 DType = 0x2 // DTypeFloat64 stores point coordinates as 64-bit floats.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.

	// LayoutFlat declares the data member as a 1-D scalar array of length 3*N.
	LayoutFlat Layout = 0x1
	// LayoutRowMajorTriples declares the data member as a 2-D array of N rows
	// of 3 scalars. The bytes are identical to LayoutFlat; the layout is
	// resolved once at load time.
	LayoutRowMajorTriples Layout = 0x2
)

// Size returns the byte width of one scalar of the dtype, or 0 if unknown.
func (d DType) Size() int {
	switch d {
	case DTypeFloat32:
		return 4
	case DTypeFloat64:
		return 8
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case DTypeFloat32:
		return "Float32"
	case DTypeFloat64:
		return "Float64"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutFlat:
		return "Flat"
	case LayoutRowMajorTriples:
		return "RowMajorTriples"
	default:
		return "Unknown"
	}
}
