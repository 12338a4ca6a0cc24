// Package match groups fingerprinted images into duplicate sets.
package match

import (
	"cmp"
	"slices"

	"jbmap/internal/models"
)

// Matcher is a duplicate detection strategy.
type Matcher interface {
	FindGroups(images []*models.ImageInfo) ([]*models.DuplicateGroup, error)
}

// buildGroups turns clusters of images into numbered duplicate groups.
// Clusters with fewer than two images are dropped. Group IDs follow the
// order of each cluster's first image in the input.
func buildGroups(images []*models.ImageInfo, clusterOf func(i int) int) []*models.DuplicateGroup {
	members := make(map[int][]*models.ImageInfo)
	var order []int
	for i, img := range images {
		c := clusterOf(i)
		if _, seen := members[c]; !seen {
			order = append(order, c)
		}
		members[c] = append(members[c], img)
	}

	var groups []*models.DuplicateGroup
	for _, c := range order {
		imgs := members[c]
		if len(imgs) < 2 {
			continue
		}
		group := &models.DuplicateGroup{
			ID:     len(groups) + 1,
			Images: imgs,
		}
		selectKeepAndRemove(group)
		groups = append(groups, group)
	}
	return groups
}

// selectKeepAndRemove keeps the best image of the group: highest score,
// then largest file, then newest, then first path alphabetically.
func selectKeepAndRemove(group *models.DuplicateGroup) {
	if len(group.Images) == 0 {
		return
	}

	sorted := slices.Clone(group.Images)
	slices.SortFunc(sorted, func(a, b *models.ImageInfo) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.FileSize, a.FileSize); c != 0 {
			return c
		}
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	group.Keep = sorted[0]
	group.Remove = sorted[1:]

	for _, img := range group.Images {
		img.GroupID = group.ID
	}
}

// unionFind is a disjoint-set forest with path compression and union by
// rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]int, n)}
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int) {
	px, py := uf.find(x), uf.find(y)
	if px == py {
		return
	}
	if uf.rank[px] < uf.rank[py] {
		px, py = py, px
	}
	uf.parent[py] = px
	if uf.rank[px] == uf.rank[py] {
		uf.rank[px]++
	}
}
