package compress

// ZstdCompressor provides Zstandard compression for archive members.
//
// Zstd gives the best ratio of the available codecs on offsets/lengths
// arrays and is the default for connectivity archives, which are written
// once and read many times.
//
// The implementation is selected at build time: the pure-Go
// klauspost/compress encoder by default, or valyala/gozstd bindings (see
// zstd_cgo.go).
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
