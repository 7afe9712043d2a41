package interfaces

import (
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// FileExtentReader provides access to one decoded file-extent record.
type FileExtentReader interface {
	// FileID returns the identifier of the owning file.
	FileID() types.OidT

	// LogicalAddress returns the offset within the file's data where the
	// extent starts, in bytes.
	LogicalAddress() uint64

	// Length returns the extent's length in bytes. Zero denotes a hole.
	Length() uint64

	// Flags returns the extent's flags.
	Flags() uint64

	// PhysicalBlockNumber returns the block the extent starts at. The
	// value is meaningless for a hole.
	PhysicalBlockNumber() types.Paddr

	// IsHole reports whether the extent describes a sparse region.
	IsHole() bool
}
