package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/queue"
)

func isBlackNode[K infra.OrderedKey](node RBNode[K]) bool {
	return node == nil || node.Color() == Black
}

func isRedNode[K infra.OrderedKey](node RBNode[K]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K infra.OrderedKey](target, to RBNode[K]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlackNode[K](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

func RootColorValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if root := tree.Root(); root != nil && root.Color() != Black {
		return fmt.Errorf("%w: root %v is red", ErrRBTreeRootViolation, root.Key())
	}
	return nil
}

// Inorder traversal to validate that no red node has a red child.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]RBNode[K], 0, tree.Height()+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; isRedNode[K](aux) {
			if isRedNode[K](aux.Parent()) || isRedNode[K](aux.Left()) || isRedNode[K](aux.Right()) {
				return fmt.Errorf("%w: key %v", ErrRBTreeRedViolation, aux.Key())
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes owning at least one nil leaf.
func bfsLeaves[K infra.OrderedKey](tree RBTree[K]) []RBNode[K] {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	leaves := make([]RBNode[K], 0, tree.Len()>>1+1)
	dq := queue.NewDeque[RBNode[K]]()
	dq.PushBack(aux)
	for !dq.IsEmpty() {
		aux, _ = dq.PopFront()
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			dq.PushBack(l)
		}
		if r != nil {
			dq.PushBack(r)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	leaves := bfsLeaves[K](tree)
	if leaves == nil {
		return nil
	}

	root := tree.Root()
	blackDepth := blackDepthTo[K](leaves[0], root)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K](leaves[i], root); depth != blackDepth {
			return fmt.Errorf("%w: key %v black depth %d, expected %d",
				ErrRBTreeBlackViolation, leaves[i].Key(), depth, blackDepth)
		}
	}
	return nil
}

// ParentLinkValidate checks that every child points back to its parent
// and that the root has no parent.
func ParentLinkValidate[K infra.OrderedKey](tree RBTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root %v has a parent", ErrRBTreeParentViolation, root.Key())
	}

	dq := queue.NewDeque[RBNode[K]]()
	dq.PushBack(root)
	for !dq.IsEmpty() {
		aux, _ := dq.PopFront()
		for _, child := range [2]RBNode[K]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return fmt.Errorf("%w: key %v is not linked back to %v",
					ErrRBTreeParentViolation, child.Key(), aux.Key())
			}
			dq.PushBack(child)
		}
	}
	return nil
}

func RBTreeValidate[K infra.OrderedKey](tree RBTree[K], cmp infra.OrderedKeyComparator[K]) error {
	return multierr.Combine(
		BSTOrderValidate[K](tree, cmp),
		RootColorValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
		ParentLinkValidate[K](tree),
	)
}

// RBLevelOrder returns the nodes grouped by depth, root first.
func RBLevelOrder[K infra.OrderedKey](tree RBTree[K]) [][]RBNode[K] {
	root := tree.Root()
	if root == nil {
		return nil
	}

	levels := make([][]RBNode[K], 0, tree.Height()+1)
	dq := queue.NewDeque[RBNode[K]]()
	dq.PushBack(root)
	for width := dq.Len(); width > 0; width = dq.Len() {
		level := make([]RBNode[K], 0, width)
		for i := int64(0); i < width; i++ {
			aux, _ := dq.PopFront()
			level = append(level, aux)
			if l := aux.Left(); l != nil {
				dq.PushBack(l)
			}
			if r := aux.Right(); r != nil {
				dq.PushBack(r)
			}
		}
		levels = append(levels, level)
	}
	return levels
}
