// Package objectmaps decodes the object-map header. The mapping tree it
// points at is walked lazily by the resolution service.
package objectmaps

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/objects"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// objectMapReader implements the ObjectMapReader interface.
type objectMapReader struct {
	header types.OmapPhysT
}

// NewObjectMapReader decodes an object-map block header. Only the header is
// decoded; the B-tree body is read on demand during resolution.
func NewObjectMapReader(data []byte, endian binary.ByteOrder) (interfaces.ObjectMapReader, error) {
	header, err := parseObjectMapHeader(data, endian)
	if err != nil {
		return nil, err
	}

	return &objectMapReader{header: header}, nil
}

// parseObjectMapHeader parses raw bytes into an OmapPhysT structure.
func parseObjectMapHeader(data []byte, endian binary.ByteOrder) (types.OmapPhysT, error) {
	var omap types.OmapPhysT

	if len(data) < types.OmapPhysSize {
		return omap, fmt.Errorf("%w: object map needs %d bytes, have %d",
			types.ErrTruncated, types.OmapPhysSize, len(data))
	}

	obj, err := objects.ParseObjectHeader(data, endian)
	if err != nil {
		return omap, err
	}
	if obj.OType&types.ObjectTypeMask != types.ObjectTypeOmap {
		return omap, fmt.Errorf("%w: object type at offset 24 is 0x%08x, want object map (0x%08x)",
			types.ErrUnsupportedType, obj.OType, types.ObjectTypeOmap)
	}
	omap.OmO = obj

	omap.OmFlags = endian.Uint32(data[32:36])
	omap.OmSnapCount = endian.Uint32(data[36:40])
	omap.OmTreeType = endian.Uint32(data[40:44])
	omap.OmSnapshotTreeType = endian.Uint32(data[44:48])
	omap.OmTreeOid = types.OidT(endian.Uint64(data[48:56]))
	omap.OmSnapshotTreeOid = types.OidT(endian.Uint64(data[56:64]))
	omap.OmMostRecentSnap = types.XidT(endian.Uint64(data[64:72]))
	omap.OmPendingRevertMin = types.XidT(endian.Uint64(data[72:80]))
	omap.OmPendingRevertMax = types.XidT(endian.Uint64(data[80:88]))

	return omap, nil
}

// Flags returns the object map's flags.
func (omr *objectMapReader) Flags() uint32 {
	return omr.header.OmFlags
}

// TreeType returns the type of tree used for object mappings.
func (omr *objectMapReader) TreeType() uint32 {
	return omr.header.OmTreeType
}

// TreeRootBlock returns the block number of the mapping tree's root node.
// The tree of a container object map is stored as a physical object, so
// the identifier is the block address.
func (omr *objectMapReader) TreeRootBlock() types.Paddr {
	return types.Paddr(omr.header.OmTreeOid)
}

// SnapshotCount returns the number of snapshots in the object map.
func (omr *objectMapReader) SnapshotCount() uint32 {
	return omr.header.OmSnapCount
}

// MostRecentSnapshotXID returns the transaction identifier of the most
// recent snapshot.
func (omr *objectMapReader) MostRecentSnapshotXID() types.XidT {
	return omr.header.OmMostRecentSnap
}
