package bktree

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// Distance is the set of numeric types a metric may return.
type Distance interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Metric measures the distance between two values. It must be a metric in
// the mathematical sense. A returned error aborts the operation that
// evaluated it.
type Metric[T any, D Distance] func(a, b T) (D, error)

// MetricFunc adapts an infallible distance function to a Metric.
func MetricFunc[T any, D Distance](fn func(a, b T) D) Metric[T, D] {
	if fn == nil {
		return nil
	}
	return func(a, b T) (D, error) {
		return fn(a, b), nil
	}
}

// Match is a stored value paired with its distance to a query.
type Match[T any, D Distance] struct {
	Value    T
	Distance D
}

// Tree is a BK-tree over values of type T with distances of type D.
// The zero value is not usable; construct trees with New or NewFunc.
type Tree[T any, D Distance] struct {
	root   *node[T, D]
	metric Metric[T, D]
	equal  func(a, b T) bool
}

type node[T any, D Distance] struct {
	value    T
	children map[D]*node[T, D] // distance from value -> child
}

// New creates a tree for comparable values, deduplicated with ==. The first
// initial value becomes the root; the rest are inserted in order.
func New[T comparable, D Distance](metric Metric[T, D], initial ...T) (*Tree[T, D], error) {
	return NewFunc(metric, func(a, b T) bool { return a == b }, initial...)
}

// NewFunc is like New but deduplicates values with equal. Use it for values
// that are not comparable, such as slices.
func NewFunc[T any, D Distance](metric Metric[T, D], equal func(a, b T) bool, initial ...T) (*Tree[T, D], error) {
	if metric == nil {
		return nil, ErrInvalidMetric
	}
	if equal == nil {
		return nil, fmt.Errorf("%w: nil equality function", ErrInvalidMetric)
	}

	t := &Tree[T, D]{metric: metric, equal: equal}
	for _, v := range initial {
		if err := t.Insert(v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Insert adds value to the tree. Inserting a value equal to one already
// stored is a no-op. If the metric fails the tree is left unchanged.
func (t *Tree[T, D]) Insert(value T) error {
	_, err := t.Add(value)
	return err
}

// Add is Insert that also reports whether value was linked as a new node.
func (t *Tree[T, D]) Add(value T) (bool, error) {
	if t.root == nil {
		t.root = &node[T, D]{value: value}
		return true, nil
	}

	current := t.root
	for {
		if t.equal(current.value, value) {
			return false, nil
		}
		dist, err := t.metric(current.value, value)
		if err != nil {
			return false, fmt.Errorf("bktree: insert: %w", err)
		}
		child, exists := current.children[dist]
		if !exists {
			if current.children == nil {
				current.children = make(map[D]*node[T, D])
			}
			current.children[dist] = &node[T, D]{value: value}
			return true, nil
		}
		current = child
	}
}

// Search returns a lazy sequence of every stored value whose distance to
// query is at most maxDistance. A node's value is produced before the values
// of its descendants; no other ordering is guaranteed. If the metric fails,
// the sequence yields the zero value with the error and ends.
func (t *Tree[T, D]) Search(query T, maxDistance D) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if t.root == nil || maxDistance < 0 {
			return
		}
		_, err := t.visit(t.root, query, maxDistance, func(v T, _ D) bool {
			return yield(v, nil)
		})
		if err != nil {
			var zero T
			yield(zero, fmt.Errorf("bktree: search: %w", err))
		}
	}
}

// visit walks the subtree rooted at n and calls emit for every value within
// maxDistance of query. It reports false once emit asks to stop or the
// metric fails.
func (t *Tree[T, D]) visit(n *node[T, D], query T, maxDistance D, emit func(T, D) bool) (bool, error) {
	dist, err := t.metric(n.value, query)
	if err != nil {
		return false, err
	}
	if dist <= maxDistance && !emit(n.value, dist) {
		return false, nil
	}

	// Triangle inequality: a match below n can only sit under a child whose
	// key k satisfies |dist - k| <= maxDistance. The difference is taken
	// larger minus smaller so it cannot wrap for unsigned or huge radii.
	for k, child := range n.children {
		if outside(dist, k, maxDistance) {
			continue
		}
		ok, err := t.visit(child, query, maxDistance, emit)
		if !ok {
			return false, err
		}
	}
	return true, nil
}

func outside[D Distance](dist, k, maxDistance D) bool {
	if dist > k {
		return dist-k > maxDistance
	}
	return k-dist > maxDistance
}

// SearchAll collects the matches of a range query, closest first. Matches at
// equal distance keep the order in which the tree produced them.
func (t *Tree[T, D]) SearchAll(query T, maxDistance D) ([]Match[T, D], error) {
	if t.root == nil || maxDistance < 0 {
		return nil, nil
	}

	var matches []Match[T, D]
	_, err := t.visit(t.root, query, maxDistance, func(v T, d D) bool {
		matches = append(matches, Match[T, D]{Value: v, Distance: d})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("bktree: search: %w", err)
	}

	slices.SortStableFunc(matches, func(a, b Match[T, D]) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return matches, nil
}

// Nearest returns the stored value closest to query among those within
// maxDistance. The boolean is false when nothing is in range.
func (t *Tree[T, D]) Nearest(query T, maxDistance D) (Match[T, D], bool, error) {
	var (
		best  Match[T, D]
		found bool
	)
	if t.root == nil || maxDistance < 0 {
		return best, false, nil
	}

	_, err := t.visit(t.root, query, maxDistance, func(v T, d D) bool {
		if !found || d < best.Distance {
			best = Match[T, D]{Value: v, Distance: d}
			found = true
		}
		return true
	})
	if err != nil {
		return Match[T, D]{}, false, fmt.Errorf("bktree: nearest: %w", err)
	}
	return best, found, nil
}

// Contains reports whether a value at distance zero from value is stored.
func (t *Tree[T, D]) Contains(value T) (bool, error) {
	for _, err := range t.Search(value, 0) {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// IsEmpty reports whether the tree holds no values.
func (t *Tree[T, D]) IsEmpty() bool {
	return t.root == nil
}

// Size returns the number of stored values. It walks the whole tree.
func (t *Tree[T, D]) Size() int {
	if t.root == nil {
		return 0
	}
	return t.root.size()
}

func (n *node[T, D]) size() int {
	count := 1
	for _, child := range n.children {
		count += child.size()
	}
	return count
}

// Depth returns the number of levels in the tree: 0 when empty, 1 when only
// the root is set.
func (t *Tree[T, D]) Depth() int {
	if t.root == nil {
		return 0
	}
	return t.root.depth()
}

func (n *node[T, D]) depth() int {
	deepest := 0
	for _, child := range n.children {
		deepest = max(deepest, child.depth())
	}
	return deepest + 1
}
