package container

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// physicalMapEntryReader implements the PhysicalMapEntryReader interface.
type physicalMapEntryReader struct {
	entry types.PhysicalMapEntryT
}

// NewPhysicalMapEntryReader decodes one 40-byte physical-map entry.
func NewPhysicalMapEntryReader(data []byte, endian binary.ByteOrder) (interfaces.PhysicalMapEntryReader, error) {
	entry, err := parsePhysicalMapEntry(data, endian)
	if err != nil {
		return nil, err
	}

	return &physicalMapEntryReader{entry: entry}, nil
}

// parsePhysicalMapEntry parses raw bytes into a PhysicalMapEntryT structure.
func parsePhysicalMapEntry(data []byte, endian binary.ByteOrder) (types.PhysicalMapEntryT, error) {
	var entry types.PhysicalMapEntryT

	if len(data) < types.PhysicalMapEntrySize {
		return entry, fmt.Errorf("%w: physical-map entry needs %d bytes, have %d",
			types.ErrTruncated, types.PhysicalMapEntrySize, len(data))
	}

	entry.PmeType = endian.Uint32(data[0:4])
	entry.PmeSubtype = endian.Uint32(data[4:8])
	entry.PmeSize = endian.Uint32(data[8:12])
	entry.PmePad = endian.Uint32(data[12:16])
	entry.PmeFsOid = types.OidT(endian.Uint64(data[16:24]))
	entry.PmeOid = types.OidT(endian.Uint64(data[24:32]))
	entry.PmePaddr = types.Paddr(endian.Uint64(data[32:40]))

	return entry, nil
}

// Type returns the mapped object's type and flags.
func (per *physicalMapEntryReader) Type() uint32 {
	return per.entry.PmeType
}

// Subtype returns the mapped object's subtype.
func (per *physicalMapEntryReader) Subtype() uint32 {
	return per.entry.PmeSubtype
}

// Size returns the size of the mapped object in bytes.
func (per *physicalMapEntryReader) Size() uint32 {
	return per.entry.PmeSize
}

// FilesystemOID returns the volume the object belongs to, or zero for
// container-level objects.
func (per *physicalMapEntryReader) FilesystemOID() types.OidT {
	return per.entry.PmeFsOid
}

// ObjectID returns the object identifier being mapped.
func (per *physicalMapEntryReader) ObjectID() types.OidT {
	return per.entry.PmeOid
}

// PhysicalAddress returns the block currently backing the object.
func (per *physicalMapEntryReader) PhysicalAddress() types.Paddr {
	return per.entry.PmePaddr
}
