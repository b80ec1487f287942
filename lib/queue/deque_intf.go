package queue

import (
	"errors"
	"iter"
)

var ErrDequeEmpty = errors.New("[deque] empty")

// Deque is a double-ended queue.
// It is not thread safe, the caller has to serialize the mutations.
type Deque[E any] interface {
	Len() int64
	IsEmpty() bool
	PushFront(e E)
	PushBack(e E)
	// PopFront removes and returns the front element, or ErrDequeEmpty.
	PopFront() (E, error)
	// PopBack removes and returns the back element, or ErrDequeEmpty.
	PopBack() (E, error)
	PeekFront() (E, error)
	PeekBack() (E, error)
	// All yields the elements from front to back.
	All() iter.Seq[E]
	Clear()
}
