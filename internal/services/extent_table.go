package services

import (
	"fmt"
	"sort"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// FileExtent is one contiguous physical run backing part of a file.
type FileExtent struct {
	// LogicalOffset is the byte offset within the file where the run starts.
	LogicalOffset uint64
	// BlockNumber is the physical block the run starts at. Meaningless for
	// a hole.
	BlockNumber types.Paddr
	// DataSize is the length of the run in bytes. Zero denotes a hole.
	DataSize uint64
	// Flags carries the extent record's flags.
	Flags uint64
}

// IsHole reports whether the extent describes a sparse region.
func (e FileExtent) IsHole() bool {
	return e.DataSize == 0
}

// ExtentMapping is the result of translating a logical byte offset.
type ExtentMapping struct {
	// PhysicalBlock is the block holding the byte. Meaningless for a hole.
	PhysicalBlock types.Paddr
	// BlockOffset is the byte's offset within that block.
	BlockOffset uint32
	// Remaining is the number of bytes from the offset to the end of the
	// run (or, for a hole, to the next mapped extent or the file's size).
	Remaining uint64
	// Hole reports a sparse region, which reads as zeroes.
	Hole bool
}

// FileExtentTable is the ordered extent list of one file. Extents are
// appended in ascending logical order while the file's records are
// enumerated from the tree; after that the table is immutable and safe for
// concurrent lookups.
type FileExtentTable struct {
	fileID    types.OidT
	blockSize uint32
	fileSize  uint64
	extents   []FileExtent
}

// NewFileExtentTable creates an extent table for one file. fileSize bounds
// the logical range; blockSize is the container's block size.
func NewFileExtentTable(fileID types.OidT, blockSize uint32, fileSize uint64) (*FileExtentTable, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("%w: zero block size", types.ErrInvalidArgument)
	}
	return &FileExtentTable{
		fileID:    fileID,
		blockSize: blockSize,
		fileSize:  fileSize,
	}, nil
}

// FileID returns the identifier of the file the table describes.
func (t *FileExtentTable) FileID() types.OidT {
	return t.fileID
}

// Len returns the number of extents in the table.
func (t *FileExtentTable) Len() int {
	return len(t.extents)
}

// AddExtent appends a decoded extent record. Records must arrive in
// ascending logical order, as tree enumeration yields them, and must not
// overlap; gaps are allowed and read as sparse regions.
func (t *FileExtentTable) AddExtent(record interfaces.FileExtentReader) error {
	if record == nil {
		return fmt.Errorf("%w: nil extent record", types.ErrInvalidArgument)
	}
	if record.FileID() != t.fileID {
		return fmt.Errorf("%w: extent belongs to file %d, table is for file %d",
			types.ErrInvalidArgument, record.FileID(), t.fileID)
	}

	extent := FileExtent{
		LogicalOffset: record.LogicalAddress(),
		BlockNumber:   record.PhysicalBlockNumber(),
		DataSize:      record.Length(),
		Flags:         record.Flags(),
	}

	if n := len(t.extents); n > 0 {
		prev := t.extents[n-1]
		if extent.LogicalOffset < prev.LogicalOffset+prev.DataSize {
			return fmt.Errorf("%w: extent at logical offset %d overlaps run [%d, %d)",
				types.ErrStructural, extent.LogicalOffset, prev.LogicalOffset, prev.LogicalOffset+prev.DataSize)
		}
	}

	t.extents = append(t.extents, extent)
	return nil
}

// Resolve translates a logical byte offset into a physical block and
// in-block offset. Offsets inside a gap between extents resolve as a hole;
// offsets at or past the file's size are not found.
func (t *FileExtentTable) Resolve(logicalOffset uint64) (ExtentMapping, error) {
	if logicalOffset >= t.fileSize {
		return ExtentMapping{}, fmt.Errorf("logical offset %d with file size %d: %w",
			logicalOffset, t.fileSize, types.ErrNotFound)
	}

	// First extent starting past the offset; the candidate run, if any,
	// is the one before it.
	next := sort.Search(len(t.extents), func(i int) bool {
		return t.extents[i].LogicalOffset > logicalOffset
	})

	if next > 0 {
		extent := t.extents[next-1]
		delta := logicalOffset - extent.LogicalOffset
		if delta < extent.DataSize {
			return ExtentMapping{
				PhysicalBlock: extent.BlockNumber + types.Paddr(delta/uint64(t.blockSize)),
				BlockOffset:   uint32(delta % uint64(t.blockSize)),
				Remaining:     extent.DataSize - delta,
			}, nil
		}
	}

	// Sparse region: zero-filled up to the next mapped extent or the end
	// of the file.
	holeEnd := t.fileSize
	if next < len(t.extents) {
		holeEnd = t.extents[next].LogicalOffset
	}
	return ExtentMapping{
		Remaining: holeEnd - logicalOffset,
		Hole:      true,
	}, nil
}
