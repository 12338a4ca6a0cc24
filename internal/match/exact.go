package match

import "jbmap/internal/models"

// ExactMatcher groups images whose file contents are byte-identical.
type ExactMatcher struct{}

// NewExactMatcher creates a new ExactMatcher
func NewExactMatcher() *ExactMatcher {
	return &ExactMatcher{}
}

// FindGroups groups images by SHA-256 file hash. Images without a file hash
// are never grouped.
func (m *ExactMatcher) FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, error) {
	if len(images) < 2 {
		return nil, nil
	}

	first := make(map[string]int)
	cluster := make([]int, len(images))
	for i, img := range images {
		cluster[i] = i
		if img.FileHash == "" {
			continue
		}
		if j, ok := first[img.FileHash]; ok {
			cluster[i] = j
		} else {
			first[img.FileHash] = i
		}
	}

	return buildGroups(images, func(i int) int { return cluster[i] }), nil
}
