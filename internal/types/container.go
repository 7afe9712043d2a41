package types

// NxMagic is the container superblock magic, 'NXSB' stored little-endian at
// offset 32.
const NxMagic uint32 = 'N' | 'X'<<8 | 'S'<<16 | 'B'<<24

// NxMinimumBlockSize is the smallest supported container block size.
const NxMinimumBlockSize uint32 = 512

// NxDefaultBlockSize is the block size used by almost every real container.
const NxDefaultBlockSize uint32 = 4096

// NxMaximumBlockSize is the largest supported container block size.
const NxMaximumBlockSize uint32 = 65536

// NxSuperblockT is the container superblock (nx_superblock_t). Only the
// fields up to and including the reaper identifier are modeled; everything
// past offset 176 concerns features outside the resolution layer.
type NxSuperblockT struct {
	// The object header.
	NxO ObjPhysT
	// The superblock magic, NxMagic.
	NxMagic uint32
	// The logical block size used in the container.
	NxBlockSize uint32
	// The total number of logical blocks in the container.
	NxBlockCount uint64
	// Optional feature flags.
	NxFeatures uint64
	// Read-only compatible feature flags.
	NxReadonlyCompatibleFeatures uint64
	// Incompatible feature flags.
	NxIncompatibleFeatures uint64
	// The container's UUID.
	NxUuid UUID
	// The next object identifier to be handed out.
	NxNextOid OidT
	// The next transaction identifier to be handed out.
	NxNextXid XidT
	// The ephemeral object identifier of the space manager.
	NxSpacemanOid OidT
	// The physical block number of the container's object map.
	NxOmapOid OidT
	// The ephemeral object identifier of the reaper.
	NxReaperOid OidT
}

// NxSuperblockMinSize is the smallest buffer a superblock can be decoded
// from: the fixed fields end at the reaper identifier (offset 176).
const NxSuperblockMinSize = 176
