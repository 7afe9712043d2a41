// Package btrees decodes B-tree nodes and their tables of contents.
package btrees

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/objects"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// btreeNodeReader implements the BTreeNodeReader interface.
type btreeNodeReader struct {
	node   *types.BtreeNodePhysT
	endian binary.ByteOrder
}

// NewBTreeNodeReader decodes and checksum-verifies a B-tree node. A node
// that fails verification is rejected outright; the resolver never walks
// unchecksummed data.
func NewBTreeNodeReader(data []byte, endian binary.ByteOrder) (interfaces.BTreeNodeReader, error) {
	node, err := parseBTreeNode(data, endian)
	if err != nil {
		return nil, err
	}

	if err := objects.VerifyChecksum(&node.BtnO, data); err != nil {
		return nil, fmt.Errorf("B-tree node %d: %w", node.BtnO.OOid, err)
	}

	return &btreeNodeReader{
		node:   node,
		endian: endian,
	}, nil
}

// parseBTreeNode parses raw bytes into a BtreeNodePhysT structure.
func parseBTreeNode(data []byte, endian binary.ByteOrder) (*types.BtreeNodePhysT, error) {
	if len(data) < types.BtreeNodePhysSize {
		return nil, fmt.Errorf("%w: B-tree node needs %d header bytes, have %d",
			types.ErrTruncated, types.BtreeNodePhysSize, len(data))
	}

	node := &types.BtreeNodePhysT{}

	obj, err := objects.ParseObjectHeader(data, endian)
	if err != nil {
		return nil, err
	}
	switch obj.OType & types.ObjectTypeMask {
	case types.ObjectTypeBtree, types.ObjectTypeBtreeNode:
	default:
		return nil, fmt.Errorf("%w: object type at offset 24 is 0x%08x, want a B-tree node",
			types.ErrUnsupportedType, obj.OType)
	}
	node.BtnO = obj

	node.BtnFlags = endian.Uint16(data[32:34])
	node.BtnLevel = endian.Uint16(data[34:36])
	node.BtnNkeys = endian.Uint32(data[36:40])
	node.BtnTableSpace.Off = endian.Uint16(data[40:42])
	node.BtnTableSpace.Len = endian.Uint16(data[42:44])
	node.BtnFreeSpace.Off = endian.Uint16(data[44:46])
	node.BtnFreeSpace.Len = endian.Uint16(data[46:48])
	node.BtnKeyFreeList.Off = endian.Uint16(data[48:50])
	node.BtnKeyFreeList.Len = endian.Uint16(data[50:52])
	node.BtnValFreeList.Off = endian.Uint16(data[52:54])
	node.BtnValFreeList.Len = endian.Uint16(data[54:56])

	node.BtnData = make([]byte, len(data)-types.BtreeNodePhysSize)
	copy(node.BtnData, data[types.BtreeNodePhysSize:])

	return node, nil
}

// Flags returns the node's flags.
func (br *btreeNodeReader) Flags() uint16 {
	return br.node.BtnFlags
}

// Level returns the number of child levels below this node.
func (br *btreeNodeReader) Level() uint16 {
	return br.node.BtnLevel
}

// KeyCount returns the number of keys stored in this node.
func (br *btreeNodeReader) KeyCount() uint32 {
	return br.node.BtnNkeys
}

// TableSpace returns the location of the table of contents.
func (br *btreeNodeReader) TableSpace() types.NlocT {
	return br.node.BtnTableSpace
}

// Data returns the node's storage area.
func (br *btreeNodeReader) Data() []byte {
	return br.node.BtnData
}

// IsRoot reports whether the node is a root node.
func (br *btreeNodeReader) IsRoot() bool {
	return br.node.BtnFlags&types.BtnodeRoot != 0
}

// IsLeaf reports whether the node is a leaf node.
func (br *btreeNodeReader) IsLeaf() bool {
	return br.node.BtnFlags&types.BtnodeLeaf != 0
}

// HasFixedKVSize reports whether keys and values have a fixed size.
func (br *btreeNodeReader) HasFixedKVSize() bool {
	return br.node.BtnFlags&types.BtnodeFixedKvSize != 0
}

// KeyValue returns the raw key and value bytes of the entry at the given
// table-of-contents index. Key offsets count forward from the end of the
// table space; value offsets count backward from the end of the storage
// area. keySize and valueSize supply the record sizes for fixed-size nodes
// and are ignored for variable-size ones.
func (br *btreeNodeReader) KeyValue(index uint32, keySize, valueSize int) ([]byte, []byte, error) {
	if index >= br.node.BtnNkeys {
		return nil, nil, fmt.Errorf("%w: entry index %d with %d keys",
			types.ErrOutOfBounds, index, br.node.BtnNkeys)
	}

	data := br.node.BtnData
	tocStart := int(br.node.BtnTableSpace.Off)
	keyAreaStart := tocStart + int(br.node.BtnTableSpace.Len)

	var keyOff, keyLen, valOff, valLen int
	if br.HasFixedKVSize() {
		entryOff := tocStart + int(index)*types.KvoffSize
		if entryOff+types.KvoffSize > len(data) {
			return nil, nil, fmt.Errorf("%w: table entry %d at offset %d runs past node storage",
				types.ErrTruncated, index, entryOff)
		}
		keyOff = int(br.endian.Uint16(data[entryOff : entryOff+2]))
		valOff = int(br.endian.Uint16(data[entryOff+2 : entryOff+4]))
		keyLen = keySize
		valLen = valueSize
	} else {
		entryOff := tocStart + int(index)*types.KvlocSize
		if entryOff+types.KvlocSize > len(data) {
			return nil, nil, fmt.Errorf("%w: table entry %d at offset %d runs past node storage",
				types.ErrTruncated, index, entryOff)
		}
		keyOff = int(br.endian.Uint16(data[entryOff : entryOff+2]))
		keyLen = int(br.endian.Uint16(data[entryOff+2 : entryOff+4]))
		valOff = int(br.endian.Uint16(data[entryOff+4 : entryOff+6]))
		valLen = int(br.endian.Uint16(data[entryOff+6 : entryOff+8]))
	}

	keyStart := keyAreaStart + keyOff
	if keyStart < 0 || keyLen < 0 || keyStart+keyLen > len(data) {
		return nil, nil, fmt.Errorf("%w: key %d spans [%d, %d) of %d node-storage bytes",
			types.ErrOutOfBounds, index, keyStart, keyStart+keyLen, len(data))
	}

	// Value offsets are measured backward from the end of storage. A root
	// node reserves btree_info_t in its tail, but resolution only ever
	// reaches values through these offsets, so the distinction stays here.
	valStart := len(data) - valOff
	if br.IsRoot() {
		valStart -= btreeInfoSize
	}
	if valStart < 0 || valLen < 0 || valStart+valLen > len(data) {
		return nil, nil, fmt.Errorf("%w: value %d spans [%d, %d) of %d node-storage bytes",
			types.ErrOutOfBounds, index, valStart, valStart+valLen, len(data))
	}

	return data[keyStart : keyStart+keyLen], data[valStart : valStart+valLen], nil
}

// btreeInfoSize is the encoded size of btree_info_t, stored at the tail of
// a root node's storage area.
const btreeInfoSize = 40
