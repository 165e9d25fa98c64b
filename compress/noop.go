package compress

// NoOpCompressor bypasses compression entirely.
//
// Used when archive members should stay byte-identical to their in-memory
// arrays, e.g. for debugging or when the caller compresses the whole file
// externally.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-op compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice unchanged. The result aliases data;
// callers must not mutate the input while the result is in use.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice unchanged. The result aliases data.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
