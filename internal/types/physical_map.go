package types

// The physical map (checkpoint_map_phys_t in the Apple File System
// Reference) is a flat, single-block translation table from ephemeral
// object identifiers to the physical blocks currently backing them. It
// exists so structural objects can be relocated by background maintenance
// without rewriting every reference to them.

// PhysicalMapBlockType is the required object-type tag of a physical-map
// block: a checkpoint map stored as a physical object.
const PhysicalMapBlockType = ObjPhysical | ObjectTypeCheckpointMap

// PhysicalMapMaxEntries is the largest entry count a physical-map block can
// declare. The map occupies a single fixed-size block, so a larger count
// cannot be backed by real data.
const PhysicalMapMaxEntries uint32 = 101

// PhysicalMapHeaderSize is the offset of the first entry: the object header
// plus the flags and entry-count fields.
const PhysicalMapHeaderSize = 40

// PhysicalMapEntrySize is the encoded size of one map entry.
const PhysicalMapEntrySize = 40

// PhysicalMapPhysT is the fixed header of a physical-map block.
type PhysicalMapPhysT struct {
	// The object header.
	PmO ObjPhysT
	// The map's flags.
	PmFlags uint32
	// The number of entries that follow the header.
	PmCount uint32
}

// PhysicalMapLast marks the last physical-map block of a checkpoint.
const PhysicalMapLast uint32 = 0x00000001

// PhysicalMapEntryT is one entry of a physical-map block
// (checkpoint_mapping_t). Entries appear in on-disk order; the order
// carries no meaning for lookup.
type PhysicalMapEntryT struct {
	// The type and flags of the mapped object.
	PmeType uint32
	// The subtype of the mapped object.
	PmeSubtype uint32
	// The size of the mapped object, in bytes.
	PmeSize uint32
	// Reserved padding.
	PmePad uint32
	// The virtual object identifier of the volume the object belongs to,
	// or zero for container-level objects.
	PmeFsOid OidT
	// The object identifier being mapped.
	PmeOid OidT
	// The physical address currently backing the object.
	PmePaddr Paddr
}
