package compress

import (
	"fmt"

	"github.com/neurlab/tracto/format"
)

// Compressor compresses a single archive member payload.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// The returned slice is newly allocated and owned by the caller (except
	// for the no-op codec, which returns the input unchanged). The input
	// slice is never modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a single archive member payload.
type Decompressor interface {
	// Decompress decompresses data previously produced by the matching
	// Compressor. It returns an error if the input is corrupted or was
	// compressed with an incompatible algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All tracto codecs implement it.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
