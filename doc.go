/*
Package lockfree provides a small toolkit of concurrency and memory-safety
building blocks: single-threaded interior-mutability cells, a
reference-counted shared-ownership handle, and a concurrently-shared
lazily-recomputed value cache.  The name reflects where the toolkit is
headed, not where it is: these are the lock-based primitives one has to get
right before reaching for CAS loops and epoch reclamation.

Layers

The types are built bottom-up, each one supplying the safety proof the
layer below demands.  RawCell owns a value and exposes an unchecked
interior pointer; it promises nothing.  Cell proves safety by never letting
a reference escape: every Get copies the value out, every Set overwrites in
place.  RefCell hands out scoped access, so it tracks an aliasing state
machine at run time and returns guards whose Release reverses the state
transition that created them; conflicting borrows fail with
ErrBorrowConflict instead of blocking.  Rc adds shared ownership on top: a
cluster of handles counts its members in a Cell and finalizes the value
exactly once, when the last handle is dropped.

None of these four is safe for concurrent use.  That is the point: they
make single-goroutine aliasing and ownership explicit and cheap, and leave
cross-goroutine sharing to the one type designed for it.

Cache

Cache composes two locks asymmetrically for read-heavy, write-rare
workloads.  Producers overwrite a pending source slot under an exclusive
lock (last write wins).  Readers try-lock that slot: the one winner
consumes the source and runs the transform while holding only the pending
slot's lock, then publishes under the derived slot's write lock; everyone
else is served the previously published output from under a shared read
lock, at worst one recomputation stale.  The transform is required to be
pure, which also makes its outputs memoizable: an optional ResultCache
keyed by hashed source content skips recomputation of previously seen
sources entirely.

Inspiration

The Cell/RefCell/Rc trio is a study of the Rust standard library's interior
mutability story, rebuilt in Go to show which guarantees come from the type
system there and from run-time bookkeeping here.  Keeping the bookkeeping
honest at run time is exactly what makes the exercise instructive.
*/
package lockfree
