// Package tracto stores ragged streamline collections — variable-length
// sequences of 3-D points produced by tractography — in flat array form, on
// disk and in hierarchical archives.
//
// A collection of N streamlines is flattened into three arrays: the
// concatenated point scalars (3 per point), per-streamline offsets
// (cumulative point counts) and per-streamline lengths (point counts). The
// flat form round-trips exactly: any subset of streamlines can be
// reconstructed by index, in any order, without touching the rest.
//
// # Basic Usage
//
// Spilling a collection to disk and reconstructing a subset:
//
//	import "github.com/neurlab/tracto"
//
//	c := streamline.NewCollection(streamlines)
//
//	scope, _ := tracto.Spill(c)
//	defer scope.Close() // removes the backing files
//
//	// Reconstruct streamlines 4, 0 and 4 again, in that order.
//	subset, _ := tracto.Load(scope.Paths(), []int{4, 0, 4})
//
// Writing and reading a keyed archive of connection groups:
//
//	w, _ := archive.Create("groups.trx")
//	w.WriteGroup(tracto.ConnectionKey("10", "42"), c)
//	w.Close()
//
//	r, _ := archive.Open("groups.trx")
//	defer r.Close()
//	group, _ := r.ReconstructGroup("10_42") // absent keys yield an empty collection
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the memmap and
// archive packages. For fine-grained control (storage dtype, compression,
// layouts), use those packages directly.
//
//   - streamline: the data model (Point, Streamline, Collection, attributes)
//   - ragged: the flat encoding and the shared reconstruction algorithm
//   - memmap: scoped spill directories of raw memory-mapped arrays
//   - archive: the keyed group container format
//   - fetch: reference-dataset downloads
package tracto

import (
	"github.com/neurlab/tracto/memmap"
	"github.com/neurlab/tracto/streamline"
)

// ConnectionKey builds the archive group key for a pair of region labels.
// Keys are ordered: ConnectionKey("10", "42") and ConnectionKey("42", "10")
// name different groups.
func ConnectionKey(from, to string) string {
	return from + "_" + to
}

// Spill externalizes the collection into a scoped temporary directory of
// memory-mapped flat files using the default storage settings. Close the
// returned scope to delete the files.
func Spill(c *streamline.Collection, opts ...memmap.Option) (*memmap.Scope, error) {
	return memmap.Spill(c, opts...)
}

// Load reconstructs streamlines from spilled flat files. A nil indices loads
// the whole collection; otherwise exactly the requested streamlines are
// returned in the order given, repetition included.
func Load(paths memmap.Paths, indices []int, opts ...memmap.Option) (*streamline.Collection, error) {
	return memmap.Load(paths, indices, opts...)
}
