package interfaces

import (
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// PhysicalMapEntryReader provides access to one decoded physical-map entry.
type PhysicalMapEntryReader interface {
	// Type returns the mapped object's type and flags.
	Type() uint32

	// Subtype returns the mapped object's subtype.
	Subtype() uint32

	// Size returns the size of the mapped object in bytes.
	Size() uint32

	// FilesystemOID returns the volume the object belongs to, or zero for
	// container-level objects.
	FilesystemOID() types.OidT

	// ObjectID returns the object identifier being mapped.
	ObjectID() types.OidT

	// PhysicalAddress returns the block currently backing the object.
	PhysicalAddress() types.Paddr
}

// PhysicalMapReader provides lookup over one decoded physical-map block.
// Implementations are immutable after construction and safe for concurrent
// readers.
type PhysicalMapReader interface {
	// Flags returns the map's flags.
	Flags() uint32

	// Count returns the number of entries in the map.
	Count() uint32

	// Entries returns the decoded entries in on-disk order.
	Entries() []PhysicalMapEntryReader

	// IsLast reports whether this is the last physical-map block of its
	// checkpoint.
	IsLast() bool

	// Lookup returns the physical address mapped to the given object
	// identifier. A miss returns types.ErrNotFound; callers treat it as
	// "resolve through the object map instead", not as corruption.
	Lookup(objectID types.OidT) (types.Paddr, error)
}
