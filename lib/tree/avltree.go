package tree

import (
	"iter"
	"math/bits"

	"github.com/benz9527/xtree/lib/infra"
)

type avlNode[K infra.OrderedKey] struct {
	left   *avlNode[K]
	right  *avlNode[K]
	key    K
	height int // -1 stands for the empty subtree, a leaf is 0.
	bf     int // height(right) - height(left)
}

func (node *avlNode[K]) Key() K {
	return node.key
}

func (node *avlNode[K]) Height() int {
	return avlHeight[K](node)
}

func (node *avlNode[K]) BalanceFactor() int {
	if node == nil {
		return 0
	}
	return node.bf
}

func (node *avlNode[K]) Left() AVLNode[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *avlNode[K]) Right() AVLNode[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func avlHeight[K infra.OrderedKey](node *avlNode[K]) int {
	if node == nil {
		return -1
	}
	return node.height
}

func (node *avlNode[K]) update() {
	lh, rh := avlHeight[K](node.left), avlHeight[K](node.right)
	node.height = 1 + max(lh, rh)
	node.bf = rh - lh
}

func (node *avlNode[K]) minimum() *avlNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *avlNode[K]) maximum() *avlNode[K] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   a   Y    ============>    X   c
		  / \                   / \
		 b   c                 a   b

X is updated before Y because X becomes Y's child.
*/
func (node *avlNode[K]) leftRotate() *avlNode[K] {
	y := node.right
	node.right, y.left = y.left, node
	node.update()
	y.update()
	return y
}

func (node *avlNode[K]) rightRotate() *avlNode[K] {
	y := node.left
	node.left, y.right = y.right, node
	node.update()
	y.update()
	return y
}

/*
rebalance restores |bf| <= 1 at node, which must already be updated.
Returns the new subtree root.

LL: bf < -1, left bf <= 0. Single right rotation.

	    X              L
	   /              / \
	  L     ====>    a   X
	 /
	a

LR: bf < -1, left bf > 0. Rotate L left, then X right.

	  X            X            M
	 /            /            / \
	L    ====>   M    ====>   L   X
	 \          /
	  M        L

RR and RL are the mirrors.
*/
func (node *avlNode[K]) rebalance() *avlNode[K] {
	switch {
	case node.bf < -1:
		if /* LL */ node.left.bf <= 0 {
			return node.rightRotate()
		}
		/* LR */
		node.left = node.left.leftRotate()
		return node.rightRotate()
	case node.bf > 1:
		if /* RR */ node.right.bf >= 0 {
			return node.leftRotate()
		}
		/* RL */
		node.right = node.right.rightRotate()
		return node.leftRotate()
	default:
	}
	return node
}

type avlTree[K infra.OrderedKey] struct {
	root  *avlNode[K]
	count int64
	cmp   infra.OrderedKeyComparator[K]
}

var _ AVLTree[int] = (*avlTree[int])(nil)

func (tree *avlTree[K]) keyCompare(k1, k2 K) int64 {
	if tree.cmp != nil {
		return tree.cmp(k1, k2)
	}
	return infra.AscendingKeyComparator[K](k1, k2)
}

func (tree *avlTree[K]) Len() int64 {
	return tree.count
}

func (tree *avlTree[K]) IsEmpty() bool {
	return tree.count == 0
}

func (tree *avlTree[K]) Height() int {
	return avlHeight[K](tree.root)
}

func (tree *avlTree[K]) Root() AVLNode[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *avlTree[K]) Contains(key K) bool {
	if infra.IsAbsentKey[K](key) {
		return false
	}
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return true
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return false
}

// Insert returns false and leaves the tree untouched if the key is
// absent or already present.
func (tree *avlTree[K]) Insert(key K) bool {
	if infra.IsAbsentKey[K](key) {
		return false
	}
	var inserted bool
	tree.root, inserted = tree.insert(tree.root, key)
	if inserted {
		tree.count++
	}
	return inserted
}

// A single rotation (LL, RR) or double rotation (LR, RL) per level
// is enough. Unchanged subtrees are returned without updates.
func (tree *avlTree[K]) insert(node *avlNode[K], key K) (*avlNode[K], bool) {
	if node == nil {
		return &avlNode[K]{key: key}, true
	}

	var inserted bool
	res := tree.keyCompare(key, node.key)
	if /* equal */ res == 0 {
		return node, false
	} else /* less */ if res < 0 {
		node.left, inserted = tree.insert(node.left, key)
	} else /* greater */ {
		node.right, inserted = tree.insert(node.right, key)
	}
	if !inserted {
		return node, false
	}
	node.update()
	return node.rebalance(), true
}

func (tree *avlTree[K]) Remove(key K) bool {
	if infra.IsAbsentKey[K](key) || tree.root == nil {
		return false
	}
	var removed bool
	tree.root, removed = tree.remove(tree.root, key)
	if removed {
		tree.count--
	}
	return removed
}

// Unlike insert, every level up to the root may need a rotation.
func (tree *avlTree[K]) remove(node *avlNode[K], key K) (*avlNode[K], bool) {
	if node == nil {
		return nil, false
	}

	var removed bool
	res := tree.keyCompare(key, node.key)
	if /* less */ res < 0 {
		node.left, removed = tree.remove(node.left, key)
	} else /* greater */ if res > 0 {
		node.right, removed = tree.remove(node.right, key)
	} else /* found */ {
		if node.left == nil {
			r := node.right
			node.right = nil
			return r, true
		} else if node.right == nil {
			l := node.left
			node.left = nil
			return l, true
		}
		// Two children, borrow the successor key and delete the successor.
		succ := node.right.minimum()
		node.key = succ.key
		node.right, removed = tree.remove(node.right, succ.key)
	}
	if !removed {
		return node, false
	}
	node.update()
	return node.rebalance(), true
}

func (tree *avlTree[K]) Min() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	return tree.root.minimum().key, true
}

func (tree *avlTree[K]) Max() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	return tree.root.maximum().key, true
}

func (tree *avlTree[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		aux := tree.root
		if aux == nil {
			return
		}
		// The height is below 1.441*log2(n+2).
		stack := make([]*avlNode[K], 0, 2*bits.Len64(uint64(tree.count))+1)
		for ; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
		for size := len(stack); size > 0; size = len(stack) {
			aux = stack[size-1]
			stack = stack[:size-1]
			if !yield(aux.key) {
				return
			}
			for aux = aux.right; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

func (tree *avlTree[K]) Release() {
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return
	}

	stack := make([]*avlNode[K], 0, 64)
	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right = nil, nil
	}
}

type AVLTreeOpt[K infra.OrderedKey] func(*avlTree[K])

func WithAVLTreeComparator[K infra.OrderedKey](cmp infra.OrderedKeyComparator[K]) AVLTreeOpt[K] {
	return func(tree *avlTree[K]) {
		tree.cmp = cmp
	}
}

func NewAVLTree[K infra.OrderedKey](opts ...AVLTreeOpt[K]) AVLTree[K] {
	tree := &avlTree[K]{}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.cmp == nil {
		tree.cmp = infra.AscendingKeyComparator[K]
	}
	return tree
}
