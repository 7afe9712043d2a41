package objectmaps

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// createTestObjectMapData creates object-map header test data.
func createTestObjectMapData(treeOid uint64, snapCount uint32, endian binary.ByteOrder) []byte {
	data := make([]byte, types.OmapPhysSize)

	// Object header (32 bytes)
	endian.PutUint64(data[8:16], 1026)                                     // OID
	endian.PutUint64(data[16:24], 9)                                       // XID
	endian.PutUint32(data[24:28], types.ObjPhysical|types.ObjectTypeOmap)  // Type
	endian.PutUint32(data[28:32], 0)                                       // Subtype

	endian.PutUint32(data[32:36], types.OmapManuallyManaged)               // Flags
	endian.PutUint32(data[36:40], snapCount)                               // Snapshot count
	endian.PutUint32(data[40:44], types.ObjPhysical|types.ObjectTypeBtree) // Tree type
	endian.PutUint32(data[44:48], 0)                                       // Snapshot tree type
	endian.PutUint64(data[48:56], treeOid)                                 // Tree OID
	endian.PutUint64(data[56:64], 0)                                       // Snapshot tree OID
	endian.PutUint64(data[64:72], 7)                                       // Most recent snapshot
	endian.PutUint64(data[72:80], 0)                                       // Pending revert min
	endian.PutUint64(data[80:88], 0)                                       // Pending revert max

	return data
}

func TestObjectMapReader(t *testing.T) {
	endian := binary.LittleEndian
	reader, err := NewObjectMapReader(createTestObjectMapData(523, 2, endian), endian)
	if err != nil {
		t.Fatalf("NewObjectMapReader() failed: %v", err)
	}

	if flags := reader.Flags(); flags != types.OmapManuallyManaged {
		t.Errorf("Flags() = 0x%08x, want 0x%08x", flags, types.OmapManuallyManaged)
	}
	if treeType := reader.TreeType(); treeType != types.ObjPhysical|types.ObjectTypeBtree {
		t.Errorf("TreeType() = 0x%08x, want 0x%08x", treeType, types.ObjPhysical|types.ObjectTypeBtree)
	}
	if block := reader.TreeRootBlock(); block != 523 {
		t.Errorf("TreeRootBlock() = %d, want 523", block)
	}
	if count := reader.SnapshotCount(); count != 2 {
		t.Errorf("SnapshotCount() = %d, want 2", count)
	}
	if xid := reader.MostRecentSnapshotXID(); xid != 7 {
		t.Errorf("MostRecentSnapshotXID() = %d, want 7", xid)
	}
}

func TestObjectMapReader_ErrorCases(t *testing.T) {
	endian := binary.LittleEndian

	wrongType := createTestObjectMapData(523, 0, endian)
	endian.PutUint32(wrongType[24:28], types.ObjPhysical|types.ObjectTypeFs)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "Truncated header",
			data:    createTestObjectMapData(523, 0, endian)[:80],
			wantErr: types.ErrTruncated,
		},
		{
			name:    "Wrong object type",
			data:    wrongType,
			wantErr: types.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewObjectMapReader(tt.data, endian)
			if err == nil {
				t.Fatal("NewObjectMapReader() should have failed")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewObjectMapReader() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
