// Package datastreams decodes file-extent records, the leaf records that
// translate a file's logical byte ranges into physical blocks.
package datastreams

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// fileExtentReader implements the FileExtentReader interface.
type fileExtentReader struct {
	key   types.JFileExtentKeyT
	value types.JFileExtentValT
}

// NewFileExtentReader decodes the two halves of a file-extent record as
// they appear in a B-tree leaf: the key carries the owning file and the
// logical offset, the value carries the physical run.
func NewFileExtentReader(keyData, valueData []byte, endian binary.ByteOrder) (interfaces.FileExtentReader, error) {
	key, err := ParseFileExtentKey(keyData, endian)
	if err != nil {
		return nil, err
	}

	value, err := ParseFileExtentValue(valueData, endian)
	if err != nil {
		return nil, err
	}

	return &fileExtentReader{
		key:   key,
		value: value,
	}, nil
}

// ParseFileExtentKey parses the key half of a file-extent record.
func ParseFileExtentKey(data []byte, endian binary.ByteOrder) (types.JFileExtentKeyT, error) {
	var key types.JFileExtentKeyT

	if len(data) < types.JFileExtentKeySize {
		return key, fmt.Errorf("%w: file-extent key needs %d bytes, have %d",
			types.ErrTruncated, types.JFileExtentKeySize, len(data))
	}

	key.Hdr.ObjIdAndType = endian.Uint64(data[0:8])
	key.LogicalAddr = endian.Uint64(data[8:16])

	if recordType := key.Hdr.ObjIdAndType >> types.ObjTypeShift; recordType != types.ApfsTypeFileExtent {
		return key, fmt.Errorf("%w: record type %d, want file extent (%d)",
			types.ErrUnsupportedType, recordType, types.ApfsTypeFileExtent)
	}

	return key, nil
}

// ParseFileExtentValue parses the value half of a file-extent record.
func ParseFileExtentValue(data []byte, endian binary.ByteOrder) (types.JFileExtentValT, error) {
	var value types.JFileExtentValT

	if len(data) < types.JFileExtentValSize {
		return value, fmt.Errorf("%w: file-extent value needs %d bytes, have %d",
			types.ErrTruncated, types.JFileExtentValSize, len(data))
	}

	value.LenAndFlags = endian.Uint64(data[0:8])
	value.PhysBlockNum = endian.Uint64(data[8:16])
	value.CryptoId = endian.Uint64(data[16:24])

	return value, nil
}

// FileID returns the identifier of the owning file.
func (fer *fileExtentReader) FileID() types.OidT {
	return types.OidT(fer.key.Hdr.ObjIdAndType & types.ObjIdMask)
}

// LogicalAddress returns the offset within the file's data where the
// extent starts.
func (fer *fileExtentReader) LogicalAddress() uint64 {
	return fer.key.LogicalAddr
}

// Length returns the extent's length in bytes.
func (fer *fileExtentReader) Length() uint64 {
	return fer.value.LenAndFlags & types.JFileExtentLenMask
}

// Flags returns the extent's flags.
func (fer *fileExtentReader) Flags() uint64 {
	return (fer.value.LenAndFlags & types.JFileExtentFlagMask) >> types.JFileExtentFlagShift
}

// PhysicalBlockNumber returns the block the extent starts at.
func (fer *fileExtentReader) PhysicalBlockNumber() types.Paddr {
	return types.Paddr(fer.value.PhysBlockNum)
}

// IsHole reports whether the extent describes a sparse region. A zero
// length is valid and means the range reads as zeroes; the block number is
// ignored.
func (fer *fileExtentReader) IsHole() bool {
	return fer.Length() == 0
}
