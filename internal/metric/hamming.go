package metric

import "math/bits"

// Hamming returns the number of differing bits between two 64-bit hashes.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// HammingMetric is Hamming with the bktree.Metric signature.
func HammingMetric(a, b uint64) (int, error) {
	return Hamming(a, b), nil
}
