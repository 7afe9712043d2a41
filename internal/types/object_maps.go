package types

// OmapPhysT is an object map (omap_phys_t): the header of the B-tree that
// translates (object identifier, transaction identifier) pairs to physical
// locations. The tree body is decoded lazily, node by node.
type OmapPhysT struct {
	// The object header.
	OmO ObjPhysT
	// The object map's flags.
	OmFlags uint32
	// The number of snapshots in the object map.
	OmSnapCount uint32
	// The type of tree used for object mappings.
	OmTreeType uint32
	// The type of tree used for snapshots.
	OmSnapshotTreeType uint32
	// The block number of the object mapping tree's root node.
	OmTreeOid OidT
	// The object identifier of the snapshot tree.
	OmSnapshotTreeOid OidT
	// The transaction identifier of the most recent snapshot.
	OmMostRecentSnap XidT
	// The smallest transaction identifier of an in-progress revert.
	OmPendingRevertMin XidT
	// The largest transaction identifier of an in-progress revert.
	OmPendingRevertMax XidT
}

// OmapPhysSize is the encoded size of OmapPhysT.
const OmapPhysSize = 88

// OmapKeyT is a key in the object mapping tree. Keys order by object
// identifier first, then by transaction identifier, both ascending.
type OmapKeyT struct {
	// The object identifier.
	OkOid OidT
	// The transaction identifier.
	OkXid XidT
}

// OmapValT is a value in the object mapping tree.
type OmapValT struct {
	// The mapping's flags.
	OvFlags uint32
	// The size of the object, in bytes.
	OvSize uint32
	// The physical address where the object is stored.
	OvPaddr Paddr
}

// OmapKeySize and OmapValSize are the fixed key and value sizes of the
// object mapping tree.
const (
	OmapKeySize = 16
	OmapValSize = 16
)

// OmapManuallyManaged indicates an object map without a snapshot tree.
const OmapManuallyManaged uint32 = 0x00000001

// OmapValDeleted indicates the object has been deleted and this mapping is
// a placeholder.
const OmapValDeleted uint32 = 0x00000001

// OmapValSaved indicates a mapping that shouldn't be replaced when the
// object is updated.
const OmapValSaved uint32 = 0x00000002
