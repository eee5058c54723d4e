package lockfree

import (
	"errors"
	"fmt"
)

// ErrBorrowConflict indicates a RefCell cannot currently grant the requested
// access mode. It is recoverable: the caller may retry after outstanding
// guards are released, or fall back to something else.
var ErrBorrowConflict = errors.New("borrow conflict")

type borrowMode uint8

const (
	borrowUnshared borrowMode = iota
	borrowShared
	borrowExclusive
)

func (m borrowMode) String() string {
	switch m {
	case borrowUnshared:
		return "unshared"
	case borrowShared:
		return "shared"
	case borrowExclusive:
		return "exclusive"
	}
	return fmt.Sprintf("borrowMode(%d)", uint8(m))
}

// borrowState is the tracked aliasing state of a RefCell. count is the
// number of live shared guards and is nonzero iff mode is borrowShared.
type borrowState struct {
	mode  borrowMode
	count uint32
}

// RefCell is a single-threaded interior-mutability cell for arbitrary
// values. Unlike Cell it hands out scoped access to the interior, so it
// tracks an aliasing state machine at run time: the payload has either no
// holders, one or more live shared guards, or exactly one live exclusive
// guard, never shared and exclusive at once. Conflicting borrows fail with
// ErrBorrowConflict rather than blocking.
//
// A RefCell is not safe for concurrent use; to share it across goroutines,
// wrap access in an outer lock.
type RefCell[T any] struct {
	value RawCell[T]
	state Cell[borrowState]
}

// NewRefCell returns a RefCell holding the given initial value, with no
// outstanding borrows.
func NewRefCell[T any](value T) *RefCell[T] {
	return &RefCell[T]{value: RawCell[T]{value: value}}
}

// Borrow grants shared access to the interior value. It succeeds while no
// exclusive guard is live, incrementing the shared count; otherwise it
// fails with ErrBorrowConflict. The returned guard must be released when
// the caller is done, typically with defer.
func (c *RefCell[T]) Borrow() (*Ref[T], error) {
	switch s := c.state.Get(); s.mode {
	case borrowUnshared:
		c.state.Set(borrowState{mode: borrowShared, count: 1})
	case borrowShared:
		c.state.Set(borrowState{mode: borrowShared, count: s.count + 1})
	case borrowExclusive:
		return nil, fmt.Errorf("shared borrow while exclusively borrowed: %w", ErrBorrowConflict)
	}
	return &Ref[T]{cell: c}, nil
}

// BorrowMut grants exclusive access to the interior value. It succeeds only
// while no guard of either kind is live; otherwise it fails with
// ErrBorrowConflict.
func (c *RefCell[T]) BorrowMut() (*RefMut[T], error) {
	if s := c.state.Get(); s.mode != borrowUnshared {
		return nil, fmt.Errorf("exclusive borrow while %v: %w", s.mode, ErrBorrowConflict)
	}
	c.state.Set(borrowState{mode: borrowExclusive})
	return &RefMut[T]{cell: c}, nil
}

// Ref is a live shared borrow of a RefCell. It holds no payload of its own;
// releasing it decrements the cell's shared count.
type Ref[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Value returns a copy of the borrowed value. As with Cell.Get, the copy is
// shallow.
func (r *Ref[T]) Value() T {
	if r.released {
		panic("lockfree: Value on released shared guard")
	}
	return *r.cell.value.Get()
}

// Release ends the shared borrow. Releasing a guard more than once has no
// effect, so it is safe to defer a Release and also release early.
func (r *Ref[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	s := r.cell.state.Get()
	if s.mode != borrowShared || s.count == 0 {
		// A live shared guard implies a shared state with a nonzero
		// count; anything else means the bookkeeping itself is broken.
		panic(fmt.Sprintf("lockfree: shared guard released with cell %v(%d)", s.mode, s.count))
	}
	if s.count == 1 {
		r.cell.state.Set(borrowState{mode: borrowUnshared})
	} else {
		r.cell.state.Set(borrowState{mode: borrowShared, count: s.count - 1})
	}
}

// RefMut is a live exclusive borrow of a RefCell. Releasing it returns the
// cell to the unshared state.
type RefMut[T any] struct {
	cell     *RefCell[T]
	released bool
}

// Value returns the interior pointer. The guard's exclusivity is the proof
// that reading and writing through it is sound; the pointer must not be
// used after Release.
func (m *RefMut[T]) Value() *T {
	if m.released {
		panic("lockfree: Value on released exclusive guard")
	}
	return m.cell.value.Get()
}

// Set overwrites the borrowed value.
func (m *RefMut[T]) Set(value T) {
	*m.Value() = value
}

// Release ends the exclusive borrow. Releasing a guard more than once has
// no effect.
func (m *RefMut[T]) Release() {
	if m.released {
		return
	}
	m.released = true
	s := m.cell.state.Get()
	if s.mode != borrowExclusive {
		panic(fmt.Sprintf("lockfree: exclusive guard released with cell %v(%d)", s.mode, s.count))
	}
	m.cell.state.Set(borrowState{mode: borrowUnshared})
}
