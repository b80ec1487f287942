package queue

import "iter"

const defaultDequeCapacity = 16

var _ Deque[int] = (*ringDeque[int])(nil)

// ringDeque keeps the elements in a power of 2 sized ring buffer.
//
//	head                 tail
//	 |                    |
//	[x] [x] [x] [ ] [ ] [ ]  ... wraps around by mask
type ringDeque[E any] struct {
	buf  []E
	head int64 // index of the front element
	size int64
}

func (dq *ringDeque[E]) mask() int64 {
	return int64(len(dq.buf)) - 1
}

func (dq *ringDeque[E]) grow() {
	if dq.size < int64(len(dq.buf)) {
		return
	}
	newCap := len(dq.buf) << 1
	if newCap == 0 {
		newCap = defaultDequeCapacity
	}
	buf := make([]E, newCap)
	for i := int64(0); i < dq.size; i++ {
		buf[i] = dq.buf[(dq.head+i)&dq.mask()]
	}
	dq.buf = buf
	dq.head = 0
}

func (dq *ringDeque[E]) Len() int64 {
	return dq.size
}

func (dq *ringDeque[E]) IsEmpty() bool {
	return dq.size == 0
}

func (dq *ringDeque[E]) PushFront(e E) {
	dq.grow()
	dq.head = (dq.head - 1) & dq.mask()
	dq.buf[dq.head] = e
	dq.size++
}

func (dq *ringDeque[E]) PushBack(e E) {
	dq.grow()
	dq.buf[(dq.head+dq.size)&dq.mask()] = e
	dq.size++
}

func (dq *ringDeque[E]) PopFront() (e E, err error) {
	if dq.size == 0 {
		return e, ErrDequeEmpty
	}
	var zero E
	e, dq.buf[dq.head] = dq.buf[dq.head], zero
	dq.head = (dq.head + 1) & dq.mask()
	dq.size--
	return e, nil
}

func (dq *ringDeque[E]) PopBack() (e E, err error) {
	if dq.size == 0 {
		return e, ErrDequeEmpty
	}
	var zero E
	idx := (dq.head + dq.size - 1) & dq.mask()
	e, dq.buf[idx] = dq.buf[idx], zero
	dq.size--
	return e, nil
}

func (dq *ringDeque[E]) PeekFront() (e E, err error) {
	if dq.size == 0 {
		return e, ErrDequeEmpty
	}
	return dq.buf[dq.head], nil
}

func (dq *ringDeque[E]) PeekBack() (e E, err error) {
	if dq.size == 0 {
		return e, ErrDequeEmpty
	}
	return dq.buf[(dq.head+dq.size-1)&dq.mask()], nil
}

func (dq *ringDeque[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		for i := int64(0); i < dq.size; i++ {
			if !yield(dq.buf[(dq.head+i)&dq.mask()]) {
				return
			}
		}
	}
}

func (dq *ringDeque[E]) Clear() {
	clear(dq.buf)
	dq.head = 0
	dq.size = 0
}

type DequeOption[E any] func(*ringDeque[E])

// WithDequeCapacity pre-allocates the ring buffer, rounded up to a power of 2.
func WithDequeCapacity[E any](capacity int) DequeOption[E] {
	return func(dq *ringDeque[E]) {
		if capacity <= 0 {
			return
		}
		c := defaultDequeCapacity
		for c < capacity {
			c <<= 1
		}
		dq.buf = make([]E, c)
	}
}

func NewDeque[E any](opts ...DequeOption[E]) Deque[E] {
	dq := &ringDeque[E]{}
	for _, o := range opts {
		if o != nil {
			o(dq)
		}
	}
	if dq.buf == nil {
		dq.buf = make([]E, defaultDequeCapacity)
	}
	return dq
}
