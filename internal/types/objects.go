package types

// OidT is an object identifier.
// For a physical object the identifier is the logical block address on disk
// where the object is stored. For ephemeral and virtual objects it is a
// number that stays stable across relocations of the backing block.
type OidT uint64

// XidT is a transaction identifier. Transactions are identified by a
// monotonically increasing number; zero isn't a valid transaction identifier.
type XidT uint64

// MaxCksumSize is the number of bytes used for an object checksum.
const MaxCksumSize = 8

// ObjPhysT is the header at the beginning of all objects.
type ObjPhysT struct {
	// The Fletcher-64 checksum of the object.
	OChecksum [MaxCksumSize]byte
	// The object's identifier.
	OOid OidT
	// The identifier of the most recent transaction that modified this object.
	OXid XidT
	// The object's type and flags. The low 16 bits indicate the type and
	// the high 16 bits are flags.
	OType uint32
	// The object's subtype, indicating the kind of data stored in a
	// container structure such as a B-tree.
	OSubtype uint32
}

// ObjPhysSize is the encoded size of ObjPhysT.
const ObjPhysSize = 32

// OidInvalid is an invalid object identifier.
const OidInvalid OidT = 0

// OidNxSuperblock is the ephemeral object identifier for the container superblock.
const OidNxSuperblock OidT = 1

// XidInvalid is an invalid transaction identifier.
const XidInvalid XidT = 0

// XidNewest requests the newest visible version of an object during
// object-map resolution.
const XidNewest XidT = ^XidT(0)

// ObjectTypeMask is the bit mask used to access the type portion of OType.
const ObjectTypeMask uint32 = 0x0000ffff

// ObjectTypeFlagsMask is the bit mask used to access the flags portion of OType.
const ObjectTypeFlagsMask uint32 = 0xffff0000

// ObjStorageTypeMask is the bit mask used to access the storage portion of OType.
const ObjStorageTypeMask uint32 = 0xc0000000

// Object types used during address resolution.
const (
	// ObjectTypeInvalid indicates an invalid object.
	ObjectTypeInvalid uint32 = 0x00000000

	// ObjectTypeNxSuperblock is a container superblock (nx_superblock_t).
	ObjectTypeNxSuperblock uint32 = 0x00000001

	// ObjectTypeBtree is a B-tree root node (btree_node_phys_t).
	ObjectTypeBtree uint32 = 0x00000002

	// ObjectTypeBtreeNode is a non-root B-tree node (btree_node_phys_t).
	ObjectTypeBtreeNode uint32 = 0x00000003

	// ObjectTypeSpaceman is a space manager (spaceman_phys_t).
	ObjectTypeSpaceman uint32 = 0x00000005

	// ObjectTypeOmap is an object map (omap_phys_t).
	ObjectTypeOmap uint32 = 0x0000000b

	// ObjectTypeCheckpointMap is a checkpoint map (checkpoint_map_phys_t),
	// the block this layer exposes as the physical map.
	ObjectTypeCheckpointMap uint32 = 0x0000000c

	// ObjectTypeFs is a volume superblock (apfs_superblock_t).
	ObjectTypeFs uint32 = 0x0000000d

	// ObjectTypeFstree is a tree containing file-system records.
	ObjectTypeFstree uint32 = 0x0000000e

	// ObjectTypeNxReaper is a reaper (nx_reaper_phys_t).
	ObjectTypeNxReaper uint32 = 0x00000011
)

// Object storage flags, stored in the high bits of OType.
const (
	// ObjVirtual indicates a virtual object, located through the object map.
	ObjVirtual uint32 = 0x00000000

	// ObjEphemeral indicates an ephemeral object, located through the
	// checkpoint's physical map.
	ObjEphemeral uint32 = 0x80000000

	// ObjPhysical indicates a physical object, stored at a fixed block address.
	ObjPhysical uint32 = 0x40000000

	// ObjNoheader indicates an object stored without an obj_phys_t header.
	ObjNoheader uint32 = 0x20000000

	// ObjEncrypted indicates an encrypted object.
	ObjEncrypted uint32 = 0x10000000
)
