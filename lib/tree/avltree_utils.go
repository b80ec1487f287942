package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/queue"
)

// AVLBalanceValidate checks level by level that every balance factor
// stays within [-1, 1].
func AVLBalanceValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	dq := queue.NewDeque[AVLNode[K]]()
	dq.PushBack(root)
	for !dq.IsEmpty() {
		aux, _ := dq.PopFront()
		if bf := aux.BalanceFactor(); bf < -1 || bf > 1 {
			return fmt.Errorf("%w: key %v bf %d", ErrAVLBalanceViolation, aux.Key(), bf)
		}
		if l := aux.Left(); l != nil {
			dq.PushBack(l)
		}
		if r := aux.Right(); r != nil {
			dq.PushBack(r)
		}
	}
	return nil
}

// AVLHeightValidate recomputes every subtree height and compares it with
// the stored height and balance factor.
func AVLHeightValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	_, err := avlCheckHeight[K](tree.Root())
	return err
}

func avlCheckHeight[K infra.OrderedKey](node AVLNode[K]) (int, error) {
	if node == nil {
		return -1, nil
	}
	lh, err := avlCheckHeight[K](node.Left())
	if err != nil {
		return 0, err
	}
	rh, err := avlCheckHeight[K](node.Right())
	if err != nil {
		return 0, err
	}
	h := 1 + max(lh, rh)
	if h != node.Height() {
		return 0, fmt.Errorf("%w: key %v stored %d, actual %d", ErrAVLHeightViolation, node.Key(), node.Height(), h)
	}
	if rh-lh != node.BalanceFactor() {
		return 0, fmt.Errorf("%w: key %v stored bf %d, actual %d", ErrAVLBalanceViolation, node.Key(), node.BalanceFactor(), rh-lh)
	}
	return h, nil
}

func AVLTreeValidate[K infra.OrderedKey](tree AVLTree[K], cmp infra.OrderedKeyComparator[K]) error {
	return multierr.Combine(
		BSTOrderValidate[K](tree, cmp),
		AVLHeightValidate[K](tree),
		AVLBalanceValidate[K](tree),
	)
}

// AVLLevelOrder returns the keys grouped by depth, root first.
func AVLLevelOrder[K infra.OrderedKey](tree AVLTree[K]) [][]K {
	root := tree.Root()
	if root == nil {
		return nil
	}

	levels := make([][]K, 0, root.Height()+1)
	dq := queue.NewDeque[AVLNode[K]]()
	dq.PushBack(root)
	for width := dq.Len(); width > 0; width = dq.Len() {
		level := make([]K, 0, width)
		for i := int64(0); i < width; i++ {
			aux, _ := dq.PopFront()
			level = append(level, aux.Key())
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
