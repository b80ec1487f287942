package tree

import (
	"errors"
	"fmt"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrTreeOrderViolation    = errors.New("[tree] order violation")
	ErrTreeSizeViolation     = errors.New("[tree] size violation")
	ErrAVLBalanceViolation   = errors.New("[avltree] balance violation")
	ErrAVLHeightViolation    = errors.New("[avltree] height violation")
	ErrRBTreeRedViolation    = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation  = errors.New("[rbtree] black violation")
	ErrRBTreeParentViolation = errors.New("[rbtree] parent link violation")
	ErrRBTreeRootViolation   = errors.New("[rbtree] root color violation")
)

// BSTOrderValidate checks that the in-order keys are strictly increasing
// under cmp and that their number matches Len.
// A nil cmp falls back to the ascending order.
func BSTOrderValidate[K infra.OrderedKey](set OrderedSet[K], cmp infra.OrderedKeyComparator[K]) error {
	if cmp == nil {
		cmp = infra.AscendingKeyComparator[K]
	}
	var (
		prev  K
		count int64
	)
	for key := range set.All() {
		if count > 0 && cmp(prev, key) >= 0 {
			return fmt.Errorf("%w: %v is not before %v", ErrTreeOrderViolation, prev, key)
		}
		prev = key
		count++
	}
	if count != set.Len() {
		return fmt.Errorf("%w: traversed %d, len %d", ErrTreeSizeViolation, count, set.Len())
	}
	return nil
}
