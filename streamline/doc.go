// Package streamline defines the tractography data model: 3D points, the
// streamlines connecting them, and ordered collections of streamlines with
// optional per-streamline (dps) and per-point (dpp) scalar attributes.
//
// A Collection is value-like: the encode, spill and reconstruction paths
// in the ragged, memmap and archive packages never mutate a collection they
// were given and always return freshly built ones. The only mutating entry
// points are the collection's own attribute setters, which either fully
// apply or leave the collection untouched.
//
// Collection order is semantically meaningful: per-streamline attributes and
// reconstruction indices refer to streamlines by position.
package streamline
