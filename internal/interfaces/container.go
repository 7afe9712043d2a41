package interfaces

import (
	"github.com/google/uuid"

	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// ContainerSuperblockReader provides access to the decoded container
// superblock, the root structure every other lookup is seeded from.
type ContainerSuperblockReader interface {
	// Magic returns the superblock magic number.
	Magic() uint32

	// BlockSize returns the logical block size used in the container.
	BlockSize() uint32

	// BlockCount returns the total number of logical blocks in the container.
	BlockCount() uint64

	// UUID returns the container's universally unique identifier.
	UUID() uuid.UUID

	// SpaceManagerOID returns the ephemeral object identifier of the space manager.
	SpaceManagerOID() types.OidT

	// ObjectMapBlock returns the physical block number of the container's object map.
	ObjectMapBlock() types.Paddr

	// ReaperOID returns the ephemeral object identifier of the reaper.
	ReaperOID() types.OidT

	// NextObjectID returns the next object identifier to be handed out.
	NextObjectID() types.OidT

	// NextTransactionID returns the next transaction identifier to be handed out.
	NextTransactionID() types.XidT
}
