package tree

import (
	"errors"
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var ErrRBTreeInvalidKey = errors.New("[rbtree] invalid (absent) key")

// OrderedSet is the common contract of the balanced trees.
// Keys are unique and are the values themselves.
//
// Implementations are not thread safe. Concurrent mutation without
// external synchronization is a data race and the caller's obligation.
type OrderedSet[K infra.OrderedKey] interface {
	Len() int64
	IsEmpty() bool
	// Height of the root, -1 for an empty tree and 0 for a single leaf.
	Height() int
	Contains(key K) bool
	// Remove returns false if the key is absent or not found.
	Remove(key K) bool
	Min() (K, bool)
	Max() (K, bool)
	// All yields the keys in comparator order. Each call restarts
	// the traversal. The tree must not be mutated during the iteration.
	All() iter.Seq[K]
	// Release unlinks all nodes.
	Release()
}

type AVLNode[K infra.OrderedKey] interface {
	Key() K
	Height() int
	// BalanceFactor is height(right) - height(left).
	BalanceFactor() int
	Left() AVLNode[K]
	Right() AVLNode[K]
}

type AVLTree[K infra.OrderedKey] interface {
	OrderedSet[K]
	Root() AVLNode[K]
	// Insert returns false if the key is absent or already present.
	Insert(key K) bool
}

type RBNode[K infra.OrderedKey] interface {
	Key() K
	Color() RBColor
	Left() RBNode[K]
	Right() RBNode[K]
	Parent() RBNode[K]
}

type RBTree[K infra.OrderedKey] interface {
	OrderedSet[K]
	Root() RBNode[K]
	// Insert returns ErrRBTreeInvalidKey for an absent key and
	// (false, nil) if the key is already present.
	Insert(key K) (bool, error)
	RemoveMin() (K, bool)
	Foreach(action func(idx int64, color RBColor, key K) bool)
}
