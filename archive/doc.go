// Package archive implements a hierarchical container file for streamline
// connectivity data: named groups (keyed by connection labels such as
// "12_34"), each holding the three flat-encoding members data, offsets and
// lengths.
//
// # File layout
//
// All multi-byte fields are little-endian regardless of host.
//
//	+-----------------------------------------------+
//	| Header (32 bytes)                             |
//	|   magic, version, dtype, compression,         |
//	|   group count, index offset, index CRC32C     |
//	+-----------------------------------------------+
//	| Payload section                               |
//	|   per group: data, offsets, lengths members,  |
//	|   each compressed independently               |
//	+-----------------------------------------------+
//	| Index section (72 bytes per group)            |
//	|   key hash, member offsets and sizes,         |
//	|   streamline count, point count, data ndim    |
//	+-----------------------------------------------+
//	| Names section                                 |
//	|   uvarint-length-prefixed keys in entry order |
//	+-----------------------------------------------+
//
// Members are compressed independently so a reader can reconstruct a single
// connection without touching the rest of the file. The data member may be
// declared 1-D (flat scalars) or 2-D (point rows); both carry identical
// row-major bytes and readers accept either.
//
// # Sparse semantics
//
// Absent connections are expected in connectivity data: reconstructing a key
// the archive does not contain, or one whose data member is missing, returns
// an empty collection rather than an error.
//
// Archives are written once via Writer and are strictly read-only
// afterwards; Reader memory-maps the file and is safe for concurrent use.
package archive
