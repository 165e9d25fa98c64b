// Package memmap spills a streamline collection's flat encoding to raw
// memory-mapped files under a scoped temporary directory and reconstructs
// subsets of it from those files.
//
// # File triple
//
// Spill writes three headerless files of raw native-endian arrays into a
// fresh directory: data.dat (point scalars, float32 by default), offsets.dat
// (int64 cumulative point counts) and lengths.dat (int32 point counts).
// Shapes are recomputed by readers from the file sizes. The arrays are
// encoded directly into the write-mode mappings, so spilling never holds a
// second in-memory copy of the tractogram.
//
// # Sharing and lifetime
//
// The typical caller is a multi-process worker pool: the parent spills once,
// hands the three paths to workers, and each worker Loads only its own index
// subset, paging in just the streamlines it touches. All post-spill access
// is read-only, so concurrent Load calls need no locking; the spill must
// complete before the first Load (an ordering the surrounding pipeline
// provides).
//
// The returned Scope owns the directory. Close deletes the backing files and
// is safe to call exactly once from any exit path, including after failures;
// further calls are no-ops.
package memmap
