// Package metric provides distance functions usable as BK-tree metrics:
// Euclidean distance over coordinate slices, Levenshtein edit distance over
// strings and sequences, and Hamming distance over 64-bit hashes.
//
// The *Metric variants have the signature expected by bktree.Metric.
package metric
