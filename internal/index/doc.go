// internal/index/doc.go

// Package index implements the 64-level skip-aggregation index: a dense
// per-resolution Line, a two-tier KVStorage cache fronting each Line, a
// DataPart stacking 64 Lines, and the constrained/greedy/suffix/range
// query algorithms that descend it.
package index
