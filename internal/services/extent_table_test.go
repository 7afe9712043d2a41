package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	datastreams "github.com/deploymenttheory/go-apfs-resolve/internal/parsers/data_streams"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// extentRecord decodes a synthetic file-extent record through the parser,
// so table tests exercise the same path as tree enumeration.
func extentRecord(t *testing.T, fileID, logicalAddr, length, physBlock uint64) interfaces.FileExtentReader {
	t.Helper()

	key := make([]byte, types.JFileExtentKeySize)
	testEndian.PutUint64(key[0:8], fileID|types.ApfsTypeFileExtent<<types.ObjTypeShift)
	testEndian.PutUint64(key[8:16], logicalAddr)

	value := make([]byte, types.JFileExtentValSize)
	testEndian.PutUint64(value[0:8], length)
	testEndian.PutUint64(value[8:16], physBlock)

	record, err := datastreams.NewFileExtentReader(key, value, testEndian)
	require.NoError(t, err)
	return record
}

// newSparseTable builds a 64 KiB file backed by two runs with a sparse gap:
//
//	[0, 16384)      blocks 100..103
//	[16384, 32768)  hole
//	[32768, 49152)  blocks 200..203
//	[49152, 65536)  hole
func newSparseTable(t *testing.T) *FileExtentTable {
	t.Helper()

	table, err := NewFileExtentTable(0x1234, testBlockSize, 65536)
	require.NoError(t, err)
	require.NoError(t, table.AddExtent(extentRecord(t, 0x1234, 0, 16384, 100)))
	require.NoError(t, table.AddExtent(extentRecord(t, 0x1234, 32768, 16384, 200)))
	return table
}

func TestFileExtentTable_Resolve(t *testing.T) {
	table := newSparseTable(t)

	tests := []struct {
		name   string
		offset uint64
		want   ExtentMapping
	}{
		{
			name:   "Start of the first run",
			offset: 0,
			want:   ExtentMapping{PhysicalBlock: 100, BlockOffset: 0, Remaining: 16384},
		},
		{
			name:   "Middle of a block in the first run",
			offset: 4100,
			want:   ExtentMapping{PhysicalBlock: 101, BlockOffset: 4, Remaining: 12284},
		},
		{
			name:   "Last byte of the first run",
			offset: 16383,
			want:   ExtentMapping{PhysicalBlock: 103, BlockOffset: 4095, Remaining: 1},
		},
		{
			name:   "Inside the gap",
			offset: 20000,
			want:   ExtentMapping{Hole: true, Remaining: 12768},
		},
		{
			name:   "Start of the second run",
			offset: 32768,
			want:   ExtentMapping{PhysicalBlock: 200, BlockOffset: 0, Remaining: 16384},
		},
		{
			name:   "Trailing hole runs to the file size",
			offset: 49152,
			want:   ExtentMapping{Hole: true, Remaining: 16384},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping, err := table.Resolve(tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mapping)
		})
	}
}

func TestFileExtentTable_ResolvePastEnd(t *testing.T) {
	table := newSparseTable(t)

	_, err := table.Resolve(65536)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFileExtentTable_RejectsOverlap(t *testing.T) {
	table, err := NewFileExtentTable(0x1234, testBlockSize, 65536)
	require.NoError(t, err)
	require.NoError(t, table.AddExtent(extentRecord(t, 0x1234, 0, 16384, 100)))

	err = table.AddExtent(extentRecord(t, 0x1234, 8192, 16384, 200))
	assert.ErrorIs(t, err, types.ErrStructural)
}

func TestFileExtentTable_RejectsForeignFile(t *testing.T) {
	table := newSparseTable(t)

	err := table.AddExtent(extentRecord(t, 0x9999, 0, 4096, 300))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestFileExtentTable_InvalidBlockSize(t *testing.T) {
	_, err := NewFileExtentTable(0x1234, 0, 65536)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestFileExtentTable_Accessors(t *testing.T) {
	table := newSparseTable(t)

	assert.Equal(t, types.OidT(0x1234), table.FileID())
	assert.Equal(t, 2, table.Len())
}
