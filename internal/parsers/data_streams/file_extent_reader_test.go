package datastreams

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// createTestExtentRecord creates the key and value halves of a file-extent
// record.
func createTestExtentRecord(fileID, logicalAddr, length, flags, physBlock uint64, endian binary.ByteOrder) ([]byte, []byte) {
	key := make([]byte, types.JFileExtentKeySize)
	endian.PutUint64(key[0:8], fileID|types.ApfsTypeFileExtent<<types.ObjTypeShift)
	endian.PutUint64(key[8:16], logicalAddr)

	value := make([]byte, types.JFileExtentValSize)
	endian.PutUint64(value[0:8], length|flags<<types.JFileExtentFlagShift)
	endian.PutUint64(value[8:16], physBlock)
	endian.PutUint64(value[16:24], 0) // Crypto ID

	return key, value
}

func TestFileExtentReader(t *testing.T) {
	endian := binary.LittleEndian
	key, value := createTestExtentRecord(0x1234, 8192, 16384, 0, 77, endian)

	reader, err := NewFileExtentReader(key, value, endian)
	if err != nil {
		t.Fatalf("NewFileExtentReader() failed: %v", err)
	}

	if fileID := reader.FileID(); fileID != 0x1234 {
		t.Errorf("FileID() = 0x%x, want 0x1234", fileID)
	}
	if addr := reader.LogicalAddress(); addr != 8192 {
		t.Errorf("LogicalAddress() = %d, want 8192", addr)
	}
	if length := reader.Length(); length != 16384 {
		t.Errorf("Length() = %d, want 16384", length)
	}
	if flags := reader.Flags(); flags != 0 {
		t.Errorf("Flags() = %d, want 0", flags)
	}
	if block := reader.PhysicalBlockNumber(); block != 77 {
		t.Errorf("PhysicalBlockNumber() = %d, want 77", block)
	}
	if reader.IsHole() {
		t.Error("IsHole() = true for a mapped extent")
	}
}

func TestFileExtentReader_Hole(t *testing.T) {
	endian := binary.LittleEndian
	key, value := createTestExtentRecord(0x1234, 4096, 0, 0, 0, endian)

	reader, err := NewFileExtentReader(key, value, endian)
	if err != nil {
		t.Fatalf("NewFileExtentReader() failed: %v", err)
	}
	if !reader.IsHole() {
		t.Error("IsHole() = false for a zero-length extent")
	}
}

func TestFileExtentReader_LengthAndFlagsMasking(t *testing.T) {
	endian := binary.LittleEndian
	flags := uint64(types.FextCryptoIdIsTweak)
	key, value := createTestExtentRecord(0x1234, 0, 4096, flags, 5, endian)

	reader, err := NewFileExtentReader(key, value, endian)
	if err != nil {
		t.Fatalf("NewFileExtentReader() failed: %v", err)
	}

	// Flags share a word with the length; neither may bleed into the other.
	if length := reader.Length(); length != 4096 {
		t.Errorf("Length() = %d, want 4096", length)
	}
	if got := reader.Flags(); got != flags {
		t.Errorf("Flags() = %d, want %d", got, flags)
	}
}

func TestParseFileExtentKey_ErrorCases(t *testing.T) {
	endian := binary.LittleEndian

	// An inode record header in place of a file extent.
	wrongType := make([]byte, types.JFileExtentKeySize)
	endian.PutUint64(wrongType[0:8], 0x1234|uint64(3)<<types.ObjTypeShift)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "Truncated key",
			data:    make([]byte, types.JFileExtentKeySize-1),
			wantErr: types.ErrTruncated,
		},
		{
			name:    "Wrong record type",
			data:    wrongType,
			wantErr: types.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFileExtentKey(tt.data, endian)
			if err == nil {
				t.Fatal("ParseFileExtentKey() should have failed")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseFileExtentKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFileExtentValue_Truncated(t *testing.T) {
	_, err := ParseFileExtentValue(make([]byte, types.JFileExtentValSize-1), binary.LittleEndian)
	if !errors.Is(err, types.ErrTruncated) {
		t.Errorf("ParseFileExtentValue() error = %v, want ErrTruncated", err)
	}
}
