package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
type OrderedKeyComparator[K OrderedKey] func(i, j K) int64

// IsAbsentKey reports whether the key is the absent marker.
// A key that is not equal to itself (NaN) has no place in a total order,
// so the ordered containers reject it before any comparison.
func IsAbsentKey[K OrderedKey](key K) bool {
	return key != key
}

// AscendingKeyComparator is the natural order of the OrderedKey.
// It must not be called with an absent key.
func AscendingKeyComparator[K OrderedKey](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

// DescendingKeyComparator reverses the natural order.
func DescendingKeyComparator[K OrderedKey](i, j K) int64 {
	return -AscendingKeyComparator[K](i, j)
}
