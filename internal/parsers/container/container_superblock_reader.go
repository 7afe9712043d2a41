// Package container decodes container-level structures: the superblock and
// the checkpoint physical map.
package container

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/google/uuid"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/objects"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// containerSuperblockReader implements the ContainerSuperblockReader interface.
type containerSuperblockReader struct {
	superblock *types.NxSuperblockT
	endian     binary.ByteOrder
}

// NewContainerSuperblockReader decodes a container superblock from a raw
// block. The decode is a pure function over the bytes; the reader holds no
// reference to the input slice.
func NewContainerSuperblockReader(data []byte, endian binary.ByteOrder) (interfaces.ContainerSuperblockReader, error) {
	superblock, err := parseContainerSuperblock(data, endian)
	if err != nil {
		return nil, err
	}

	return &containerSuperblockReader{
		superblock: superblock,
		endian:     endian,
	}, nil
}

// parseContainerSuperblock parses raw bytes into a NxSuperblockT structure
// and validates the invariants the rest of the layer depends on.
func parseContainerSuperblock(data []byte, endian binary.ByteOrder) (*types.NxSuperblockT, error) {
	if len(data) < types.NxSuperblockMinSize {
		return nil, fmt.Errorf("%w: container superblock needs %d bytes, have %d",
			types.ErrTruncated, types.NxSuperblockMinSize, len(data))
	}

	sb := &types.NxSuperblockT{}

	obj, err := objects.ParseObjectHeader(data, endian)
	if err != nil {
		return nil, err
	}
	sb.NxO = obj

	sb.NxMagic = endian.Uint32(data[32:36])
	if sb.NxMagic != types.NxMagic {
		return nil, fmt.Errorf("%w: superblock magic at offset 32 is 0x%08x, want 0x%08x",
			types.ErrInvalidFormat, sb.NxMagic, types.NxMagic)
	}

	sb.NxBlockSize = endian.Uint32(data[36:40])
	sb.NxBlockCount = endian.Uint64(data[40:48])
	sb.NxFeatures = endian.Uint64(data[48:56])
	sb.NxReadonlyCompatibleFeatures = endian.Uint64(data[56:64])
	sb.NxIncompatibleFeatures = endian.Uint64(data[64:72])
	copy(sb.NxUuid[:], data[72:88])
	sb.NxNextOid = types.OidT(endian.Uint64(data[88:96]))
	sb.NxNextXid = types.XidT(endian.Uint64(data[96:104]))

	// Checkpoint descriptor fields occupy offsets 104-151; the resolution
	// layer does not consume them.
	sb.NxSpacemanOid = types.OidT(endian.Uint64(data[152:160]))
	sb.NxOmapOid = types.OidT(endian.Uint64(data[160:168]))
	sb.NxReaperOid = types.OidT(endian.Uint64(data[168:176]))

	if err := validateGeometry(sb); err != nil {
		return nil, err
	}

	return sb, nil
}

// validateGeometry checks the block-size and block-count invariants: the
// block size is a power of two in the supported range, and the container's
// total byte size fits in 64 bits.
func validateGeometry(sb *types.NxSuperblockT) error {
	size := sb.NxBlockSize
	if size < types.NxMinimumBlockSize || size > types.NxMaximumBlockSize || bits.OnesCount32(size) != 1 {
		return fmt.Errorf("%w: block size %d is not a power of two in [%d, %d]",
			types.ErrOutOfBounds, size, types.NxMinimumBlockSize, types.NxMaximumBlockSize)
	}

	hi, _ := bits.Mul64(sb.NxBlockCount, uint64(size))
	if hi != 0 {
		return fmt.Errorf("%w: %d blocks of %d bytes overflow a 64-bit container size",
			types.ErrOutOfBounds, sb.NxBlockCount, size)
	}

	return nil
}

// Magic returns the superblock magic number.
func (csr *containerSuperblockReader) Magic() uint32 {
	return csr.superblock.NxMagic
}

// BlockSize returns the logical block size used in the container.
func (csr *containerSuperblockReader) BlockSize() uint32 {
	return csr.superblock.NxBlockSize
}

// BlockCount returns the total number of logical blocks in the container.
func (csr *containerSuperblockReader) BlockCount() uint64 {
	return csr.superblock.NxBlockCount
}

// UUID returns the container's universally unique identifier.
func (csr *containerSuperblockReader) UUID() uuid.UUID {
	return uuid.UUID(csr.superblock.NxUuid)
}

// SpaceManagerOID returns the ephemeral object identifier of the space manager.
func (csr *containerSuperblockReader) SpaceManagerOID() types.OidT {
	return csr.superblock.NxSpacemanOid
}

// ObjectMapBlock returns the physical block number of the container's object map.
func (csr *containerSuperblockReader) ObjectMapBlock() types.Paddr {
	return types.Paddr(csr.superblock.NxOmapOid)
}

// ReaperOID returns the ephemeral object identifier of the reaper.
func (csr *containerSuperblockReader) ReaperOID() types.OidT {
	return csr.superblock.NxReaperOid
}

// NextObjectID returns the next object identifier to be handed out.
func (csr *containerSuperblockReader) NextObjectID() types.OidT {
	return csr.superblock.NxNextOid
}

// NextTransactionID returns the next transaction identifier to be handed out.
func (csr *containerSuperblockReader) NextTransactionID() types.XidT {
	return csr.superblock.NxNextXid
}
