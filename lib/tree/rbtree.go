package tree

import (
	"iter"
	"math/bits"

	"github.com/benz9527/xtree/lib/infra"
)

// A nil *rbNode is the sentinel (NIL leaf). It is always black, owns
// nothing and is never written, so no node shares mutable state with it.
type rbNode[K infra.OrderedKey] struct {
	parent *rbNode[K]
	left   *rbNode[K]
	right  *rbNode[K]
	key    K
	color  RBColor
}

func (node *rbNode[K]) Key() K {
	return node.key
}

func (node *rbNode[K]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *rbNode[K]) Left() RBNode[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K]) Right() RBNode[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K]) Parent() RBNode[K] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func isBlack[K infra.OrderedKey](node *rbNode[K]) bool {
	return node == nil || node.color == Black
}

func isRed[K infra.OrderedKey](node *rbNode[K]) bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}
	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K]) child(dir RBDirection) *rbNode[K] {
	if dir == Left {
		return node.left
	}
	return node.right
}

func (node *rbNode[K]) sibling() *rbNode[K] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[K]) minimum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K]) maximum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

type rbTree[K infra.OrderedKey] struct {
	root           *rbNode[K]
	count          int64
	cmp            infra.OrderedKeyComparator[K]
	isRmBorrowPred bool
}

var _ RBTree[int] = (*rbTree[int])(nil)

func (tree *rbTree[K]) keyCompare(k1, k2 K) int64 {
	if tree.cmp != nil {
		return tree.cmp(k1, k2)
	}
	return infra.AscendingKeyComparator[K](k1, k2)
}

func (tree *rbTree[K]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K]) IsEmpty() bool {
	return tree.count == 0
}

func (tree *rbTree[K]) Root() RBNode[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K]) Height() int {
	return rbHeight[K](tree.root)
}

func rbHeight[K infra.OrderedKey](node *rbNode[K]) int {
	if node == nil {
		return -1
	}
	return 1 + max(rbHeight[K](node.left), rbHeight[K](node.right))
}

// relink attaches child at the dir side of parent, or as the root.
// It is the only place besides rotations that writes a parent link.
func (tree *rbTree[K]) relink(parent *rbNode[K], dir RBDirection, child *rbNode[K]) {
	switch dir {
	case Root:
		tree.root = child
	case Left:
		parent.left = child
	case Right:
		parent.right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to relink")
	}
	if child != nil {
		child.parent = parent
	}
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// The longest path is at most twice the length of the shortest path,
// so the height is bounded by 2*log2(n+1).

/*
		 |                         |
		 X                         Y
		/ \     leftRotate(X)     / \
	   a   Y    ============>    X   c
		  / \                   / \
		 b   c                 a   b

Three parent links move: Y takes X's old parent, X hangs
under Y and b hangs under X.
*/
func (tree *rbTree[K]) leftRotate(x *rbNode[K]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x
	if x.right != nil {
		x.right.parent = x
	}
	x.parent = y
	tree.relink(p, dir, y)
}

/*
		   |                         |
		   X                         Y
		  / \     rightRotate(X)    / \
		 Y   c    ============>    a   X
		/ \                           / \
	   a   b                         b   c
*/
func (tree *rbTree[K]) rightRotate(x *rbNode[K]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x
	if x.left != nil {
		x.left.parent = x
	}
	x.parent = y
	tree.relink(p, dir, y)
}

// rotate moves x down to its dir side.
func (tree *rbTree[K]) rotate(x *rbNode[K], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown rotate direction")
	}
}

func (tree *rbTree[K]) search(key K) *rbNode[K] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return nil
}

func (tree *rbTree[K]) Contains(key K) bool {
	if infra.IsAbsentKey[K](key) {
		return false
	}
	return tree.search(key) != nil
}

// Insert links the new key as a red leaf, then fixes the red-violation.
// i1: Empty rbtree, the new node becomes the root and is painted black.
func (tree *rbTree[K]) Insert(key K) (bool, error) {
	if infra.IsAbsentKey[K](key) {
		return false, infra.WrapErrorStack(ErrRBTreeInvalidKey)
	}

	var p *rbNode[K]
	dir := Root
	for x := tree.root; x != nil; {
		res := tree.keyCompare(key, x.key)
		if /* equal */ res == 0 {
			return false, nil
		}
		p = x
		if /* less */ res < 0 {
			x, dir = x.left, Left
		} else /* greater */ {
			x, dir = x.right, Right
		}
	}

	z := &rbNode[K]{
		key:   key,
		color: Red,
	}
	tree.relink(p, dir, z)
	tree.count++
	tree.insertRebalance(z)
	return true, nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X's parent P is black (or X is the root). Nothing to fix.

im2: Both the parent P and the uncle U are red, so grandpa G is black.
Push the blackness of G down one level. G may now be a red child of a
red node, continue from G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: P is red, U is black and X is the inner grandchild (zig-zag).
Rotate P down to its own side to straighten the path, then X and P
exchange roles and im4 applies.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: P is red, U is black and X is the outer grandchild (straight line).
Repaint P black and G red, rotate G down to the uncle side. The subtree
root is black again, the loop ends.

	    [G]                 <G>               [P]
	    / \    repaint      / \   rotate(G)   / \
	  <P> [U]  ========>  [P] [U]  ======>  <X> <G>
	  /                   /                       \
	<X>                 <X>                       [U]
*/
func (tree *rbTree[K]) insertRebalance(x *rbNode[K]) {
	for /* im1 */ isRed[K](x.parent) {
		// A red parent is never the root, so the grandpa exists.
		p := x.parent
		gp := p.parent
		pDir := p.Direction()
		if uncle := p.sibling(); /* im2 */ isRed[K](uncle) {
			p.color, uncle.color, gp.color = Black, Black, Red
			x = gp
			continue
		}

		if /* im3 */ x.Direction() != pDir {
			tree.rotate(p, pDir)
			x, p = p, x
		}

		/* im4 */
		p.color, gp.color = Black, Red
		tree.rotate(gp, -pDir)
		break
	}
	tree.root.color = Black
}

// Remove deletes the key. Absent or missing keys return false.
func (tree *rbTree[K]) Remove(key K) bool {
	if infra.IsAbsentKey[K](key) || tree.count <= 0 {
		return false
	}
	z := tree.search(key)
	if z == nil {
		return false
	}
	tree.removeNode(z)
	return true
}

func (tree *rbTree[K]) RemoveMin() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	_min := tree.root.minimum()
	key = _min.key
	tree.removeNode(_min)
	return key, true
}

/*
r1: Z is the only node, the tree becomes empty.

r2: Z has both children. Borrow the key of its successor S (minimum of
the right subtree, default) or its predecessor (maximum of the left
subtree), then splice out the borrowed node instead. Only the key moves.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   copy(S->Z)   L  ..
	    |   =========>       |
	    P                    P
	   / \                  / \
	  S  ..               (S) ..   (S) is spliced out next

r3: Y is a leaf. A red leaf is unlinked directly. A black leaf leaves a
black-height deficit on its path: Y itself plays the double-black
replacement during the fix-up (standing in for the NIL that will take its
place) and is unlinked afterwards.

r4: Y has exactly one child C. By p4 C must be red and Y black. C is
transplanted into Y's place and repainted black.
*/
func (tree *rbTree[K]) removeNode(z *rbNode[K]) {
	y := z
	if /* r2 */ z.left != nil && z.right != nil {
		if tree.isRmBorrowPred {
			y = z.left.maximum()
		} else {
			y = z.right.minimum()
		}
		z.key = y.key
	}

	replace := y.left
	if replace == nil {
		replace = y.right
	}

	if /* r4 */ replace != nil {
		tree.relink(y.parent, y.Direction(), replace)
		if y.color == Black {
			if isRed[K](replace) {
				replace.color = Black
			} else {
				tree.removeRebalance(replace)
			}
		}
	} else if /* r1 */ y.isRoot() {
		tree.root = nil
	} else /* r3 */ {
		if y.color == Black {
			tree.removeRebalance(y)
		}
		tree.relink(y.parent, y.Direction(), nil)
	}

	// Unlink node
	y.parent, y.left, y.right = nil, nil, nil
	tree.count--
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black. S is X's sibling, Sc is S's child on X's side
(near nephew) and Sd is S's child on the opposite side (far nephew).
The diagrams show X as a left child, the right side is the mirror.

rm1: S is red, so P, Sc and Sd are black. Repaint S black and P red,
rotate P down to X's side. X gets a black sibling (the old Sc), enter
rm2 - rm4.

	  [P]                   <P>                 [S]
	  / \      repaint      / \   l-rotate(P)   / \
	[X] <S>  ==========>  [X] [S]  ========>  <P> [Sd]
	    / \                   / \             / \
	 [Sc] [Sd]             [Sc] [Sd]        [X] [Sc]

rm2: S, Sc and Sd are black. Repaint S red, so both sides of P lack one
black. Move the deficit up to P. If P is red the loop ends and P is
repainted black, otherwise continue from P.

	  {P}             {P} <- new X
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black. Repaint Sc black and S red,
rotate S away from X. The new sibling has a red far child, enter rm4.

	  {P}                   {P}                 {P}
	  / \                   / \                 / \
	[X] [S]    repaint    [X] <S>  r-rotate(S) [X] [Sc]
	    / \   ========>       / \  ==========>       \
	  <Sc> [Sd]            [Sc] [Sd]                 <S>
	                                                   \
	                                                   [Sd]

rm4: S is black and Sd is red. S takes P's color, P and Sd become black,
rotate P down to X's side. The extra black is absorbed, the loop ends.

	  {P}                   {S}
	  / \    l-rotate(P)    / \
	[X] [S]  ==========>  [P] [Sd]
	    / \               / \
	 {Sc} <Sd>          [X] {Sc}
*/
func (tree *rbTree[K]) removeRebalance(x *rbNode[K]) {
	for !x.isRoot() && isBlack[K](x) {
		dir := x.Direction()
		p := x.parent
		// X carries a black-height >= 1, so the sibling is never NIL.
		s := p.child(-dir)
		if /* rm1 */ isRed[K](s) {
			s.color, p.color = Black, Red
			tree.rotate(p, dir)
			s = p.child(-dir)
		}

		sc, sd := s.child(dir), s.child(-dir)
		if /* rm2 */ isBlack[K](sc) && isBlack[K](sd) {
			s.color = Red
			x = p
			continue
		}

		if /* rm3 */ isBlack[K](sd) {
			sc.color, s.color = Black, Red
			tree.rotate(s, -dir)
			s = p.child(-dir)
			sd = s.child(-dir)
		}

		/* rm4 */
		s.color, p.color, sd.color = p.color, Black, Black
		tree.rotate(p, dir)
		x = tree.root
	}
	x.color = Black
}

func (tree *rbTree[K]) Min() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	return tree.root.minimum().key, true
}

func (tree *rbTree[K]) Max() (key K, ok bool) {
	if tree.root == nil {
		return key, false
	}
	return tree.root.maximum().key, true
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K]) inorder(action func(idx int64, node *rbNode[K]) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	// The height is at most 2*log2(n+1).
	stack := make([]*rbNode[K], 0, 2*bits.Len64(uint64(tree.count))+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if !action(idx, aux) {
			return
		}
		idx++
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *rbTree[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	tree.inorder(func(idx int64, node *rbNode[K]) bool {
		return action(idx, node.color, node.key)
	})
}

func (tree *rbTree[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.inorder(func(_ int64, node *rbNode[K]) bool {
			return yield(node.key)
		})
	}
}

func (tree *rbTree[K]) Release() {
	aux := tree.root
	tree.root = nil
	tree.count = 0
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K], 0, 64)
	defer func() {
		clear(stack)
	}()

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
		aux.parent, aux.left, aux.right = nil, nil, nil
	}
}

type RBTreeOpt[K infra.OrderedKey] func(*rbTree[K])

func WithRBTreeComparator[K infra.OrderedKey](cmp infra.OrderedKeyComparator[K]) RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.cmp = cmp
	}
}

// WithRBTreeRemoveBorrowPred removes a node with two children by
// borrowing its in-order predecessor instead of the successor.
func WithRBTreeRemoveBorrowPred[K infra.OrderedKey]() RBTreeOpt[K] {
	return func(tree *rbTree[K]) {
		tree.isRmBorrowPred = true
	}
}

func NewRBTree[K infra.OrderedKey](opts ...RBTreeOpt[K]) RBTree[K] {
	tree := &rbTree[K]{
		count:          0,
		isRmBorrowPred: false,
	}

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
