// Package handle provides stable (index, arena) references that replace
// pointers between mesh entities.
//
// An Arena owns a slice of entities. A Handle names one slot of one arena;
// two handles are equal iff they carry the same index and the same arena, so
// handles can be compared with == and used as map keys. Handles stay valid
// while an arena only grows, and are never valid against a different arena.
package handle

import (
	"errors"
	"fmt"
	"iter"
)

var (
	// ErrOutOfRange is returned when a handle's index is not below its
	// arena's length, or the handle is not attached to any arena.
	ErrOutOfRange = errors.New("handle: index out of range")

	// ErrForeignHandle is returned when a handle is resolved against an
	// arena that did not issue it.
	ErrForeignHandle = errors.New("handle: handle belongs to a different arena")
)

// Handle is a weak, non-owning reference to an element of an Arena.
// The zero value is the nil handle.
type Handle[T any] struct {
	index int
	owner *Arena[T]
}

// New constructs a handle to slot index of owner. No bounds check is made
// here; GetElement reports an out-of-range index.
func New[T any](index int, owner *Arena[T]) Handle[T] {
	return Handle[T]{index: index, owner: owner}
}

// Index returns the slot index.
func (h Handle[T]) Index() int {
	return h.index
}

// Owner returns the arena the handle refers into, or nil.
func (h Handle[T]) Owner() *Arena[T] {
	return h.owner
}

// IsNil reports whether the handle is not attached to any arena.
func (h Handle[T]) IsNil() bool {
	return h.owner == nil
}

// IsValid reports whether the handle can be dereferenced.
func (h Handle[T]) IsValid() bool {
	return h.owner != nil && h.index >= 0 && h.index < len(h.owner.items)
}

// SameOwner reports whether both handles refer into the same arena.
func (h Handle[T]) SameOwner(other Handle[T]) bool {
	return h.owner == other.owner
}

// GetElement dereferences the handle.
func (h Handle[T]) GetElement() (*T, error) {
	if h.owner == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrOutOfRange)
	}
	return h.owner.Get(h)
}

// MustGet dereferences the handle and panics if it is not valid.
func (h Handle[T]) MustGet() *T {
	e, err := h.GetElement()
	if err != nil {
		panic(err)
	}
	return e
}

func (h Handle[T]) String() string {
	if h.owner == nil {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d)", h.index)
}

// Arena is an append-only container addressed by handles.
type Arena[T any] struct {
	items []T
}

// NewArena returns an arena holding n zero-valued elements.
func NewArena[T any](n int) *Arena[T] {
	return &Arena[T]{items: make([]T, n)}
}

// Reserve grows the arena's capacity so that n more elements can be
// appended without reallocation.
func (a *Arena[T]) Reserve(n int) {
	if cap(a.items)-len(a.items) >= n {
		return
	}
	grown := make([]T, len(a.items), len(a.items)+n)
	copy(grown, a.items)
	a.items = grown
}

// Append adds v and returns its handle. Pointers previously returned by Get
// may be invalidated; handles are not.
func (a *Arena[T]) Append(v T) Handle[T] {
	a.items = append(a.items, v)
	return Handle[T]{index: len(a.items) - 1, owner: a}
}

// Len returns the number of elements.
func (a *Arena[T]) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns the handle for slot i without checking bounds.
func (a *Arena[T]) At(i int) Handle[T] {
	return Handle[T]{index: i, owner: a}
}

// Get resolves h against the arena.
func (a *Arena[T]) Get(h Handle[T]) (*T, error) {
	if h.owner != a {
		return nil, ErrForeignHandle
	}
	if h.index < 0 || h.index >= len(a.items) {
		return nil, fmt.Errorf("%w: index %d, size %d", ErrOutOfRange, h.index, len(a.items))
	}
	return &a.items[h.index], nil
}

// Slot returns a pointer to element i. It panics when i is out of range.
func (a *Arena[T]) Slot(i int) *T {
	return &a.items[i]
}

// Handles returns a handle to every element in index order.
func (a *Arena[T]) Handles() []Handle[T] {
	hs := make([]Handle[T], len(a.items))
	for i := range a.items {
		hs[i] = Handle[T]{index: i, owner: a}
	}
	return hs
}

// All iterates over every (handle, element) pair in index order.
func (a *Arena[T]) All() iter.Seq2[Handle[T], *T] {
	return func(yield func(Handle[T], *T) bool) {
		for i := range a.items {
			if !yield(Handle[T]{index: i, owner: a}, &a.items[i]) {
				return
			}
		}
	}
}
