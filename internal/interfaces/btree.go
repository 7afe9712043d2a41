package interfaces

import (
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// BTreeNodeReader provides access to one decoded and checksum-verified
// B-tree node.
type BTreeNodeReader interface {
	// Flags returns the node's flags.
	Flags() uint16

	// Level returns the number of child levels below this node.
	Level() uint16

	// KeyCount returns the number of keys stored in this node.
	KeyCount() uint32

	// TableSpace returns the location of the table of contents.
	TableSpace() types.NlocT

	// Data returns the node's storage area, the bytes following the fixed
	// header.
	Data() []byte

	// IsRoot reports whether the node is a root node.
	IsRoot() bool

	// IsLeaf reports whether the node is a leaf node.
	IsLeaf() bool

	// HasFixedKVSize reports whether keys and values have a fixed size.
	HasFixedKVSize() bool

	// KeyValue returns the raw key and value bytes of the entry at the
	// given table-of-contents index.
	KeyValue(index uint32, keySize, valueSize int) (key []byte, value []byte, err error)
}
