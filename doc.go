// Package qtree implements an unbounded point-region quadtree: a mutable
// Builder for inserting points, a Finalize step that lays the tree out as
// a single contiguous, offset-linked buffer, and Dump/Load to move that
// buffer to and from disk. The query package built on top of
// FinalizedTree answers region queries against it.
package qtree
