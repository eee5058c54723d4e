package lockfree

// RawCell owns exactly one value of type T and hands out an unchecked
// pointer to it. It carries no synchronization and no aliasing bookkeeping:
// a caller that writes through the pointer must prove no other live
// reference to the interior exists, and a caller that reads through it must
// prove no concurrent write is in flight. Every checked type in this
// package (Cell, RefCell) is a thin layer that supplies exactly that proof,
// which is why the pointer never escapes their method boundaries.
//
// A RawCell is not safe for concurrent use.
type RawCell[T any] struct {
	value T
}

// NewRawCell returns a RawCell holding the given initial value.
func NewRawCell[T any](value T) *RawCell[T] {
	return &RawCell[T]{value: value}
}

// Get returns the interior pointer. See the RawCell invariants for what the
// caller must guarantee before dereferencing it.
func (c *RawCell[T]) Get() *T {
	return &c.value
}

// Cell is a single-threaded interior-mutability cell for values that are
// meaningful to copy. Get copies the whole value out and Set overwrites it
// in place, so no reference to the interior ever escapes and no borrow
// tracking is needed. Note that the copy is shallow: if T contains maps,
// slices or pointers, the copies share their referents.
//
// The zero Cell holds the zero value of T. A Cell is not safe for
// concurrent use.
type Cell[T any] struct {
	raw RawCell[T]
}

// NewCell returns a Cell holding the given initial value.
func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{raw: RawCell[T]{value: value}}
}

// Get returns a copy of the current value.
func (c *Cell[T]) Get() T {
	return *c.raw.Get()
}

// Set overwrites the current value.
func (c *Cell[T]) Set(value T) {
	*c.raw.Get() = value
}
