// Package objects decodes the obj_phys_t preamble shared by every
// structural block and verifies object checksums.
package objects

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// ParseObjectHeader decodes the obj_phys_t preamble at the start of a block.
func ParseObjectHeader(data []byte, endian binary.ByteOrder) (types.ObjPhysT, error) {
	var obj types.ObjPhysT

	if len(data) < types.ObjPhysSize {
		return obj, fmt.Errorf("%w: object header needs %d bytes, have %d",
			types.ErrTruncated, types.ObjPhysSize, len(data))
	}

	copy(obj.OChecksum[:], data[0:8])
	obj.OOid = types.OidT(endian.Uint64(data[8:16]))
	obj.OXid = types.XidT(endian.Uint64(data[16:24]))
	obj.OType = endian.Uint32(data[24:28])
	obj.OSubtype = endian.Uint32(data[28:32])

	return obj, nil
}

// ObjectType returns the type portion of a combined type-and-flags value.
func ObjectType(otype uint32) uint32 {
	return otype & types.ObjectTypeMask
}

// StorageType returns the storage flags of a combined type-and-flags value.
func StorageType(otype uint32) uint32 {
	return otype & types.ObjStorageTypeMask
}
