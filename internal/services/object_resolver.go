package services

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/logger"
	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/btrees"
	objectmaps "github.com/deploymenttheory/go-apfs-resolve/internal/parsers/object_maps"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// ObjectResolver translates object identifiers into physical block
// addresses. The physical map, when present, is the fast path for
// relocated structural objects; everything else goes through the object
// map's B-tree. The resolver holds no mutable state across calls, so one
// instance may serve concurrent lookups.
type ObjectResolver struct {
	device      interfaces.BlockDevice
	objectMap   interfaces.ObjectMapReader
	physicalMap interfaces.PhysicalMapReader
	endian      binary.ByteOrder
	log         *zap.SugaredLogger
}

// NewObjectResolver creates a resolver over the given device and object map.
func NewObjectResolver(device interfaces.BlockDevice, objectMap interfaces.ObjectMapReader, endian binary.ByteOrder) (*ObjectResolver, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: nil block device", types.ErrInvalidArgument)
	}
	if objectMap == nil {
		return nil, fmt.Errorf("%w: nil object map", types.ErrInvalidArgument)
	}

	return &ObjectResolver{
		device:    device,
		objectMap: objectMap,
		endian:    endian,
		log:       logger.Nop(),
	}, nil
}

// WithPhysicalMap attaches a decoded physical map as the lookup fast path.
func (r *ObjectResolver) WithPhysicalMap(physicalMap interfaces.PhysicalMapReader) *ObjectResolver {
	r.physicalMap = physicalMap
	return r
}

// WithLogger attaches a logger for resolution tracing.
func (r *ObjectResolver) WithLogger(log *zap.SugaredLogger) *ObjectResolver {
	if log != nil {
		r.log = log
	}
	return r
}

// LoadObjectMap reads and decodes the object-map header at the given block.
func LoadObjectMap(device interfaces.BlockDevice, address types.Paddr, endian binary.ByteOrder) (interfaces.ObjectMapReader, error) {
	if device == nil {
		return nil, fmt.Errorf("%w: nil block device", types.ErrInvalidArgument)
	}
	if !address.IsValid() {
		return nil, fmt.Errorf("%w: object map block %d", types.ErrOutOfBounds, address)
	}

	data, err := device.ReadBlock(uint64(address))
	if err != nil {
		return nil, fmt.Errorf("failed to read object map at block %d: %w", address, err)
	}

	return objectmaps.NewObjectMapReader(data, endian)
}

// ResolveNewest resolves an object identifier at the newest visible version.
func (r *ObjectResolver) ResolveNewest(oid types.OidT) (types.Paddr, error) {
	return r.Resolve(oid, types.XidNewest)
}

// Resolve returns the physical address backing the given object identifier
// at the requested transaction version: the mapping with the greatest
// stored version not exceeding xid. A miss anywhere along the way is
// types.ErrNotFound; decode and integrity failures abort this lookup only.
func (r *ObjectResolver) Resolve(oid types.OidT, xid types.XidT) (types.Paddr, error) {
	if oid == types.OidInvalid {
		return 0, fmt.Errorf("%w: invalid object identifier", types.ErrInvalidArgument)
	}
	if xid == types.XidInvalid {
		xid = types.XidNewest
	}

	// Fast path: relocated structural objects live in the physical map and
	// never need the tree walk.
	if r.physicalMap != nil {
		addr, err := r.physicalMap.Lookup(oid)
		if err == nil {
			r.log.Debugw("resolved through physical map", "oid", oid, "paddr", addr)
			return addr, nil
		}
		if !errors.Is(err, types.ErrNotFound) {
			return 0, err
		}
	}

	return r.walkTree(oid, xid)
}

// walkTree descends the object map's B-tree from the root. The walk is an
// explicit loop with a depth bound taken from the root's declared level, so
// a reference cycle terminates with a structural error instead of looping.
func (r *ObjectResolver) walkTree(oid types.OidT, xid types.XidT) (types.Paddr, error) {
	block := r.objectMap.TreeRootBlock()
	maxDepth := types.BtreeMaxHeight

	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return 0, fmt.Errorf("%w: object map traversal exceeded depth %d at block %d",
				types.ErrStructural, maxDepth, block)
		}

		data, err := r.device.ReadBlock(uint64(block))
		if err != nil {
			return 0, fmt.Errorf("failed to read object map node at block %d: %w", block, err)
		}

		node, err := btrees.NewBTreeNodeReader(data, r.endian)
		if err != nil {
			return 0, fmt.Errorf("object map node at block %d: %w", block, err)
		}

		if depth == 0 {
			declared := int(node.Level()) + 1
			if declared < maxDepth {
				maxDepth = declared
			}
		}

		r.log.Debugw("visiting object map node",
			"block", block, "level", node.Level(), "keys", node.KeyCount(), "leaf", node.IsLeaf())

		if node.IsLeaf() {
			return r.searchLeaf(node, oid, xid)
		}

		childOid, err := r.findChild(node, oid, xid)
		if err != nil {
			return 0, err
		}

		block, err = r.locateNode(childOid)
		if err != nil {
			return 0, err
		}
	}
}

// searchLeaf scans a leaf node for the mapping with the greatest
// transaction identifier not exceeding the requested one.
func (r *ObjectResolver) searchLeaf(node interfaces.BTreeNodeReader, oid types.OidT, xid types.XidT) (types.Paddr, error) {
	var (
		bestXid   types.XidT
		bestValue []byte
		found     bool
	)

	for i := uint32(0); i < node.KeyCount(); i++ {
		key, value, err := node.KeyValue(i, types.OmapKeySize, types.OmapValSize)
		if err != nil {
			return 0, err
		}
		if len(key) < types.OmapKeySize || len(value) < types.OmapValSize {
			return 0, fmt.Errorf("%w: leaf entry %d has %d key and %d value bytes",
				types.ErrTruncated, i, len(key), len(value))
		}

		entryOid := types.OidT(r.endian.Uint64(key[0:8]))
		entryXid := types.XidT(r.endian.Uint64(key[8:16]))

		if entryOid != oid || entryXid > xid {
			continue
		}
		if !found || entryXid > bestXid {
			bestXid = entryXid
			bestValue = value
			found = true
		}
	}

	if !found {
		return 0, fmt.Errorf("object %d at version %d: %w", oid, xid, types.ErrNotFound)
	}

	flags := r.endian.Uint32(bestValue[0:4])
	paddr := types.Paddr(r.endian.Uint64(bestValue[8:16]))

	if flags&types.OmapValDeleted != 0 {
		// A deleted placeholder shadows older mappings; the object is gone.
		return 0, fmt.Errorf("object %d deleted at version %d: %w", oid, bestXid, types.ErrNotFound)
	}

	r.log.Debugw("resolved through object map", "oid", oid, "xid", bestXid, "paddr", paddr)
	return paddr, nil
}

// findChild selects the child whose key range covers the target: the entry
// with the greatest key not exceeding (oid, xid). A target below the
// node's smallest key cannot exist in the tree.
func (r *ObjectResolver) findChild(node interfaces.BTreeNodeReader, oid types.OidT, xid types.XidT) (types.OidT, error) {
	var (
		childOid types.OidT
		found    bool
	)

	for i := uint32(0); i < node.KeyCount(); i++ {
		key, value, err := node.KeyValue(i, types.OmapKeySize, 8)
		if err != nil {
			return 0, err
		}
		if len(key) < types.OmapKeySize || len(value) < 8 {
			return 0, fmt.Errorf("%w: index entry %d has %d key and %d value bytes",
				types.ErrTruncated, i, len(key), len(value))
		}

		entryOid := types.OidT(r.endian.Uint64(key[0:8]))
		entryXid := types.XidT(r.endian.Uint64(key[8:16]))

		if compareOmapKeys(entryOid, entryXid, oid, xid) > 0 {
			break
		}
		childOid = types.OidT(r.endian.Uint64(value[0:8]))
		found = true
	}

	if !found {
		return 0, fmt.Errorf("object %d below the tree's key range: %w", oid, types.ErrNotFound)
	}
	return childOid, nil
}

// locateNode maps a child node reference to the block storing it. Nodes of
// the container's object map tree are physical objects, but a relocated
// node is reached through the physical map first.
func (r *ObjectResolver) locateNode(oid types.OidT) (types.Paddr, error) {
	if r.physicalMap != nil {
		addr, err := r.physicalMap.Lookup(oid)
		if err == nil {
			r.log.Debugw("node indirected through physical map", "oid", oid, "paddr", addr)
			return addr, nil
		}
		if !errors.Is(err, types.ErrNotFound) {
			return 0, err
		}
	}
	return types.Paddr(oid), nil
}

// compareOmapKeys orders object map keys by object identifier, then by
// transaction identifier.
func compareOmapKeys(aOid types.OidT, aXid types.XidT, bOid types.OidT, bXid types.XidT) int {
	switch {
	case aOid < bOid:
		return -1
	case aOid > bOid:
		return 1
	case aXid < bXid:
		return -1
	case aXid > bXid:
		return 1
	default:
		return 0
	}
}
