// Package bktree implements a BK-tree, a metric-space index for fuzzy
// membership queries.
//
// A tree stores values under a caller-supplied metric and answers range
// queries ("every stored value within distance r of q") by pruning subtrees
// with the triangle inequality. The metric must satisfy identity, symmetry
// and the triangle inequality; the tree never checks these axioms, and a
// metric that violates them makes searches incomplete.
//
// Trees are not safe for concurrent mutation. Concurrent reads are safe
// only while no goroutine inserts.
package bktree
