package lockfree

// rcInner is the shared allocation behind a cluster of Rc handles. refcount
// always equals the number of live handles pointing at it.
type rcInner[T any] struct {
	value    T
	refcount Cell[uint64]
	finalize func(*T)
}

// Rc is a reference-counted shared-ownership handle. Every Clone returns a
// new handle aliasing the same interior value, and the value is finalized
// exactly once, when the last handle is dropped.
//
// Rc grants shared access only; to mutate the interior, embed a Cell or
// RefCell in T. The count is not atomic, so a cluster of handles must stay
// within a single goroutine, or be confined behind an outer lock.
type Rc[T any] struct {
	inner *rcInner[T]
}

// NewRc allocates a shared value with a reference count of one.
func NewRc[T any](value T) *Rc[T] {
	return NewRcWithFinalizer(value, nil)
}

// NewRcWithFinalizer is NewRc with a hook that runs exactly once, when the
// last handle is dropped. The pointer passed to finalize is the interior
// value and must not be retained.
func NewRcWithFinalizer[T any](value T, finalize func(*T)) *Rc[T] {
	inner := &rcInner[T]{value: value, finalize: finalize}
	inner.refcount.Set(1)
	return &Rc[T]{inner: inner}
}

// Clone returns a new handle to the same value, incrementing the reference
// count. Clone panics if this handle has already been dropped.
func (r *Rc[T]) Clone() *Rc[T] {
	if r.inner == nil {
		panic("lockfree: Clone on dropped Rc")
	}
	r.inner.refcount.Set(r.inner.refcount.Get() + 1)
	return &Rc[T]{inner: r.inner}
}

// Value returns a pointer to the shared value. Mutating through it is only
// sound if T itself provides interior mutability. Value panics if this
// handle has already been dropped.
func (r *Rc[T]) Value() *T {
	if r.inner == nil {
		panic("lockfree: Value on dropped Rc")
	}
	return &r.inner.value
}

// RefCount returns the number of live handles sharing the value.
func (r *Rc[T]) RefCount() uint64 {
	if r.inner == nil {
		panic("lockfree: RefCount on dropped Rc")
	}
	return r.inner.refcount.Get()
}

// Drop releases this handle. The last drop runs the finalizer, if any, and
// severs the cluster's access to the value; the allocation is then left to
// the garbage collector, which is Go's analogue of freeing the heap box.
// Dropping the same handle twice panics.
func (r *Rc[T]) Drop() {
	if r.inner == nil {
		panic("lockfree: Rc dropped twice")
	}
	inner := r.inner
	r.inner = nil
	if c := inner.refcount.Get(); c > 1 {
		inner.refcount.Set(c - 1)
		return
	}
	// Last handle out. The decrement-and-free is centralized here so there
	// is exactly one path that can finalize the value.
	inner.refcount.Set(0)
	if inner.finalize != nil {
		inner.finalize(&inner.value)
	}
}
