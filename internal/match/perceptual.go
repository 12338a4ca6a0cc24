package match

import (
	"fmt"

	"jbmap/internal/bktree"
	"jbmap/internal/metric"
	"jbmap/internal/models"
)

// DefaultThreshold is the Hamming distance used when none is configured.
const DefaultThreshold = 10

// PerceptualMatcher groups images whose perceptual hashes are within a
// Hamming distance threshold, transitively.
type PerceptualMatcher struct {
	threshold int
}

// NewPerceptualMatcher creates a new PerceptualMatcher. A negative
// threshold selects DefaultThreshold.
func NewPerceptualMatcher(threshold int) *PerceptualMatcher {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &PerceptualMatcher{threshold: threshold}
}

// Threshold returns the configured Hamming distance threshold.
func (m *PerceptualMatcher) Threshold() int {
	return m.threshold
}

// FindGroups links every image to the earlier images within the threshold,
// using a BK-tree over the hashes seen so far, and returns the resulting
// connected components.
func (m *PerceptualMatcher) FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, error) {
	n := len(images)
	if n < 2 {
		return nil, nil
	}

	uf := newUnionFind(n)
	tree, err := bktree.New(metric.HammingMetric)
	if err != nil {
		return nil, err
	}

	// The tree stores each distinct hash once; owner maps a hash back to the
	// first image that carried it.
	owner := make(map[uint64]int, n)

	for i, img := range images {
		for h, err := range tree.Search(img.Hash, m.threshold) {
			if err != nil {
				return nil, fmt.Errorf("search similar hashes: %w", err)
			}
			uf.union(i, owner[h])
		}
		if _, seen := owner[img.Hash]; !seen {
			owner[img.Hash] = i
			if err := tree.Insert(img.Hash); err != nil {
				return nil, fmt.Errorf("index hash: %w", err)
			}
		}
	}

	return buildGroups(images, uf.find), nil
}
