// Package compress provides the compression codecs used for archive member
// payloads.
//
// Each group member (data, offsets, lengths) is compressed independently, so
// a reader can decompress exactly one connection's streamlines without
// touching the rest of the file. Raw float32 coordinates compress modestly;
// offsets and lengths, being near-monotonic small integers, compress very
// well.
//
// Four codecs are available, selected via format.CompressionType:
//
//   - None: passthrough, for mmap-friendly or already-compressed inputs
//   - Zstd: best ratio, the default for connectivity archives
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// The Zstd codec has two implementations chosen at build time: the pure-Go
// klauspost/compress encoder (default) and valyala/gozstd bindings.
//
// All codecs are stateless values and safe for concurrent use; pooled
// encoder/decoder state is managed internally.
package compress
