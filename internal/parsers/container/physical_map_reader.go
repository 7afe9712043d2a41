package container

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/objects"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// physicalMapReader implements the PhysicalMapReader interface. The entry
// slice is populated once during construction and never mutated, so one
// reader may be shared by concurrent lookups.
type physicalMapReader struct {
	header  types.PhysicalMapPhysT
	entries []interfaces.PhysicalMapEntryReader
}

// NewPhysicalMapReader decodes a physical-map block: the object header, the
// entry count, and every entry in on-disk order. Decoding the same bytes
// twice yields structurally equal readers.
func NewPhysicalMapReader(data []byte, endian binary.ByteOrder) (interfaces.PhysicalMapReader, error) {
	if len(data) < types.PhysicalMapHeaderSize {
		return nil, fmt.Errorf("%w: physical-map block needs %d header bytes, have %d",
			types.ErrTruncated, types.PhysicalMapHeaderSize, len(data))
	}

	obj, err := objects.ParseObjectHeader(data, endian)
	if err != nil {
		return nil, err
	}
	if obj.OType != types.PhysicalMapBlockType {
		return nil, fmt.Errorf("%w: object type at offset 24 is 0x%08x, want 0x%08x",
			types.ErrUnsupportedType, obj.OType, types.PhysicalMapBlockType)
	}

	header := types.PhysicalMapPhysT{
		PmO:     obj,
		PmFlags: endian.Uint32(data[32:36]),
		PmCount: endian.Uint32(data[36:40]),
	}

	if header.PmCount > types.PhysicalMapMaxEntries {
		return nil, fmt.Errorf("%w: physical map declares %d entries, ceiling is %d",
			types.ErrOutOfBounds, header.PmCount, types.PhysicalMapMaxEntries)
	}

	entries, err := parsePhysicalMapEntries(data[types.PhysicalMapHeaderSize:], header.PmCount, endian)
	if err != nil {
		return nil, err
	}

	return &physicalMapReader{
		header:  header,
		entries: entries,
	}, nil
}

// parsePhysicalMapEntries decodes the entry array that follows the header,
// rejecting duplicate object identifiers: the identifier is unique within
// one block's entry set, so a duplicate signals corruption and must not be
// silently merged.
func parsePhysicalMapEntries(data []byte, count uint32, endian binary.ByteOrder) ([]interfaces.PhysicalMapEntryReader, error) {
	entries := make([]interfaces.PhysicalMapEntryReader, 0, count)
	seen := make(map[types.OidT]struct{}, count)

	for i := uint32(0); i < count; i++ {
		offset := int(i) * types.PhysicalMapEntrySize
		if offset+types.PhysicalMapEntrySize > len(data) {
			return nil, fmt.Errorf("%w: physical-map entry %d at offset %d runs past %d bytes",
				types.ErrTruncated, i, types.PhysicalMapHeaderSize+offset, types.PhysicalMapHeaderSize+len(data))
		}

		entry, err := NewPhysicalMapEntryReader(data[offset:offset+types.PhysicalMapEntrySize], endian)
		if err != nil {
			return nil, fmt.Errorf("failed to decode physical-map entry %d: %w", i, err)
		}

		if _, dup := seen[entry.ObjectID()]; dup {
			return nil, fmt.Errorf("%w: duplicate object identifier %d in physical-map entry %d",
				types.ErrStructural, entry.ObjectID(), i)
		}
		seen[entry.ObjectID()] = struct{}{}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Flags returns the map's flags.
func (pmr *physicalMapReader) Flags() uint32 {
	return pmr.header.PmFlags
}

// Count returns the number of entries in the map.
func (pmr *physicalMapReader) Count() uint32 {
	return pmr.header.PmCount
}

// Entries returns the decoded entries in on-disk order.
func (pmr *physicalMapReader) Entries() []interfaces.PhysicalMapEntryReader {
	return pmr.entries
}

// IsLast reports whether this is the last physical-map block of its checkpoint.
func (pmr *physicalMapReader) IsLast() bool {
	return pmr.header.PmFlags&types.PhysicalMapLast != 0
}

// Lookup returns the physical address mapped to the given object
// identifier. The on-disk array is unsorted, so the scan is linear; the
// first exact match wins. A miss is types.ErrNotFound, which callers treat
// as "resolve through the object map instead".
func (pmr *physicalMapReader) Lookup(objectID types.OidT) (types.Paddr, error) {
	for _, entry := range pmr.entries {
		if entry.ObjectID() == objectID {
			return entry.PhysicalAddress(), nil
		}
	}
	return 0, fmt.Errorf("object identifier %d: %w", objectID, types.ErrNotFound)
}
