package types

// NlocT is a location within a B-tree node, expressed as an offset and
// length relative to the start of the node's storage area.
type NlocT struct {
	// The offset, in bytes.
	Off uint16
	// The length, in bytes.
	Len uint16
}

// BtoffInvalid is an invalid offset, used in locations that don't refer to
// space in the node.
const BtoffInvalid uint16 = 0xffff

// KvoffT is a table-of-contents entry for a node whose keys and values have
// a fixed size: an offset into the key area and an offset into the value area.
type KvoffT struct {
	// The key's offset.
	K uint16
	// The value's offset.
	V uint16
}

// KvlocT is a table-of-contents entry for a node with variable-size keys or
// values.
type KvlocT struct {
	// The key's location.
	K NlocT
	// The value's location.
	V NlocT
}

// KvoffSize and KvlocSize are the encoded sizes of the two table-of-contents
// entry kinds.
const (
	KvoffSize = 4
	KvlocSize = 8
)

// BtreeNodePhysT is a B-tree node (btree_node_phys_t). The node's keys,
// values and table of contents live in BtnData; all table offsets are
// relative to its start.
type BtreeNodePhysT struct {
	// The object header.
	BtnO ObjPhysT
	// The node's flags.
	BtnFlags uint16
	// The number of child levels below this node; zero for a leaf.
	BtnLevel uint16
	// The number of keys stored in this node.
	BtnNkeys uint32
	// The location of the table of contents.
	BtnTableSpace NlocT
	// The location of the shared free space for keys and values.
	BtnFreeSpace NlocT
	// The linked list tracking free key space.
	BtnKeyFreeList NlocT
	// The linked list tracking free value space.
	BtnValFreeList NlocT
	// The node's storage area.
	BtnData []byte
}

// BtreeNodePhysSize is the encoded size of the fixed B-tree node header;
// BtnData starts at this offset.
const BtreeNodePhysSize = 56

// B-tree node flags.
const (
	// BtnodeRoot indicates a root node.
	BtnodeRoot uint16 = 0x0001

	// BtnodeLeaf indicates a leaf node.
	BtnodeLeaf uint16 = 0x0002

	// BtnodeFixedKvSize indicates keys and values of fixed size, so the
	// table of contents omits lengths.
	BtnodeFixedKvSize uint16 = 0x0004

	// BtnodeHashed indicates a node that contains child hashes.
	BtnodeHashed uint16 = 0x0008

	// BtnodeNoheader indicates a node stored without an object header.
	BtnodeNoheader uint16 = 0x0010

	// BtnodeCheckKoffInval indicates a node in a transient state.
	BtnodeCheckKoffInval uint16 = 0x8000
)

// BtreeMaxHeight is the hard ceiling on tree depth accepted during
// traversal. A well-formed object map never approaches it; exceeding it
// means a cycle or corrupted level fields.
const BtreeMaxHeight = 16
