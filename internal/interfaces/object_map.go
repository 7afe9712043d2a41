package interfaces

import (
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// ObjectMapReader provides access to a decoded object-map header. The
// B-tree body is not decoded eagerly; resolution reads nodes on demand.
type ObjectMapReader interface {
	// Flags returns the object map's flags.
	Flags() uint32

	// TreeType returns the type of tree used for object mappings.
	TreeType() uint32

	// TreeRootBlock returns the block number of the mapping tree's root node.
	TreeRootBlock() types.Paddr

	// SnapshotCount returns the number of snapshots in the object map.
	SnapshotCount() uint32

	// MostRecentSnapshotXID returns the transaction identifier of the most
	// recent snapshot.
	MostRecentSnapshotXID() types.XidT
}

// ObjectResolver translates object identifiers into physical block
// addresses by walking the object map's B-tree, consulting the physical
// map for indirected node locations.
type ObjectResolver interface {
	// Resolve returns the physical address backing the given object
	// identifier at the requested transaction version: the mapping with
	// the greatest stored version not exceeding xid. Pass types.XidNewest
	// for the newest visible version. An absent identifier yields
	// types.ErrNotFound.
	Resolve(oid types.OidT, xid types.XidT) (types.Paddr, error)
}
