// Package types defines the on-disk data structures and constants of the
// Apple File System container format, following the Apple File System
// Reference. Only the structures needed by the address-resolution layer
// are modeled here.
package types

// Paddr is the physical address of an on-disk block.
// Negative numbers aren't valid addresses. The value is modeled as a
// signed integer to match IOKit.
type Paddr int64

// IsValid reports whether the physical address can refer to a block.
func (p Paddr) IsValid() bool {
	return p >= 0
}

// Prange is a contiguous range of physical addresses.
type Prange struct {
	// The first block in the range.
	PrStartPaddr Paddr
	// The number of blocks in the range.
	PrBlockCount uint64
}

// UUID is a universally unique identifier stored on disk.
type UUID [16]byte
