package bktree

import "iter"

// All returns the stored values in pre-order, the tree's canonical order.
func (t *Tree[T, D]) All() iter.Seq[T] {
	return t.PreOrder()
}

// PreOrder yields each node's value before the values of its children.
// Siblings are visited in map order.
func (t *Tree[T, D]) PreOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		if t.root != nil {
			t.root.preOrder(yield)
		}
	}
}

func (n *node[T, D]) preOrder(yield func(T) bool) bool {
	if !yield(n.value) {
		return false
	}
	for _, child := range n.children {
		if !child.preOrder(yield) {
			return false
		}
	}
	return true
}

// PostOrder yields every child's value after the values of that child's own
// descendants. The value held by the root is never yielded, so the sequence
// covers all stored values except the root's.
func (t *Tree[T, D]) PostOrder() iter.Seq[T] {
	return func(yield func(T) bool) {
		if t.root != nil {
			t.root.postOrder(yield)
		}
	}
}

func (n *node[T, D]) postOrder(yield func(T) bool) bool {
	for _, child := range n.children {
		if !child.postOrder(yield) {
			return false
		}
		if !yield(child.value) {
			return false
		}
	}
	return true
}

// BreadthFirst yields values level by level, starting at the root.
func (t *Tree[T, D]) BreadthFirst() iter.Seq[T] {
	return func(yield func(T) bool) {
		if t.root == nil {
			return
		}
		queue := []*node[T, D]{t.root}
		for len(queue) > 0 {
			n := queue[0]
			queue[0] = nil
			queue = queue[1:]
			if !yield(n.value) {
				return
			}
			for _, child := range n.children {
				queue = append(queue, child)
			}
		}
	}
}
