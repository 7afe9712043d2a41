package services

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/objects"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// Test fixtures assemble a synthetic container image in memory: a
// superblock at block zero, an object map, and an object-map B-tree, all
// with valid checksums.

const testBlockSize = 4096

var testEndian = binary.LittleEndian

type testImage struct {
	blocks [][]byte
}

func newTestImage(blockCount int) *testImage {
	img := &testImage{blocks: make([][]byte, blockCount)}
	for i := range img.blocks {
		img.blocks[i] = make([]byte, testBlockSize)
	}
	return img
}

func (img *testImage) bytes() []byte {
	out := make([]byte, 0, len(img.blocks)*testBlockSize)
	for _, block := range img.blocks {
		out = append(out, block...)
	}
	return out
}

// sealBlock computes and stores the block's checksum.
func sealBlock(t *testing.T, block []byte) {
	t.Helper()
	checksum, err := objects.ComputeChecksum(block)
	if err != nil {
		t.Fatalf("ComputeChecksum() failed: %v", err)
	}
	copy(block[0:8], checksum[:])
}

// writeSuperblock fills block zero with a container superblock pointing at
// the given object-map block.
func (img *testImage) writeSuperblock(t *testing.T, omapBlock uint64) {
	t.Helper()
	block := img.blocks[0]

	testEndian.PutUint64(block[8:16], uint64(types.OidNxSuperblock))
	testEndian.PutUint64(block[16:24], 11)
	testEndian.PutUint32(block[24:28], types.ObjEphemeral|types.ObjectTypeNxSuperblock)

	testEndian.PutUint32(block[32:36], types.NxMagic)
	testEndian.PutUint32(block[36:40], testBlockSize)
	testEndian.PutUint64(block[40:48], uint64(len(img.blocks)))
	for i := 72; i < 88; i++ {
		block[i] = byte(i)
	}
	testEndian.PutUint64(block[88:96], 0x500)      // Next OID
	testEndian.PutUint64(block[96:104], 12)        // Next XID
	testEndian.PutUint64(block[152:160], 0x400)    // Space manager OID
	testEndian.PutUint64(block[160:168], omapBlock)
	testEndian.PutUint64(block[168:176], 0x402)    // Reaper OID

	sealBlock(t, block)
}

// writeObjectMap fills a block with an object-map header whose mapping tree
// is rooted at the given block.
func (img *testImage) writeObjectMap(t *testing.T, at, treeRoot uint64) {
	t.Helper()
	block := img.blocks[at]

	testEndian.PutUint64(block[8:16], at)
	testEndian.PutUint64(block[16:24], 11)
	testEndian.PutUint32(block[24:28], types.ObjPhysical|types.ObjectTypeOmap)

	testEndian.PutUint32(block[32:36], types.OmapManuallyManaged)
	testEndian.PutUint32(block[40:44], types.ObjPhysical|types.ObjectTypeBtree)
	testEndian.PutUint64(block[48:56], treeRoot)

	sealBlock(t, block)
}

type nodeEntry struct {
	key   []byte
	value []byte
}

// omapLeafEntry builds an object-map leaf entry mapping (oid, xid) to paddr.
func omapLeafEntry(oid, xid, paddr uint64, valueFlags uint32) nodeEntry {
	key := make([]byte, types.OmapKeySize)
	testEndian.PutUint64(key[0:8], oid)
	testEndian.PutUint64(key[8:16], xid)

	value := make([]byte, types.OmapValSize)
	testEndian.PutUint32(value[0:4], valueFlags)
	testEndian.PutUint32(value[4:8], testBlockSize)
	testEndian.PutUint64(value[8:16], paddr)

	return nodeEntry{key: key, value: value}
}

// omapIndexEntry builds an object-map index entry pointing at a child node.
func omapIndexEntry(oid, xid, childOid uint64) nodeEntry {
	key := make([]byte, types.OmapKeySize)
	testEndian.PutUint64(key[0:8], oid)
	testEndian.PutUint64(key[8:16], xid)

	value := make([]byte, 8)
	testEndian.PutUint64(value, childOid)

	return nodeEntry{key: key, value: value}
}

// writeBTreeNode fills a block with a fixed-size-entry B-tree node.
func (img *testImage) writeBTreeNode(t *testing.T, at uint64, flags uint16, level uint16, entries []nodeEntry) {
	t.Helper()
	block := img.blocks[at]
	flags |= types.BtnodeFixedKvSize

	objType := types.ObjPhysical | types.ObjectTypeBtreeNode
	if flags&types.BtnodeRoot != 0 {
		objType = types.ObjPhysical | types.ObjectTypeBtree
	}
	testEndian.PutUint64(block[8:16], at)
	testEndian.PutUint64(block[16:24], 11)
	testEndian.PutUint32(block[24:28], objType)
	testEndian.PutUint32(block[28:32], types.ObjectTypeOmap)

	tocLen := len(entries) * types.KvoffSize
	testEndian.PutUint16(block[32:34], flags)
	testEndian.PutUint16(block[34:36], level)
	testEndian.PutUint32(block[36:40], uint32(len(entries)))
	testEndian.PutUint16(block[40:42], 0)
	testEndian.PutUint16(block[42:44], uint16(tocLen))

	dataLen := testBlockSize - types.BtreeNodePhysSize
	valEnd := dataLen
	if flags&types.BtnodeRoot != 0 {
		valEnd -= 40 // btree_info_t
	}

	keyOff, valOff := 0, 0
	for i, entry := range entries {
		copy(block[types.BtreeNodePhysSize+tocLen+keyOff:], entry.key)
		valOff += len(entry.value)
		copy(block[types.BtreeNodePhysSize+valEnd-valOff:], entry.value)

		tocOff := types.BtreeNodePhysSize + i*types.KvoffSize
		testEndian.PutUint16(block[tocOff:tocOff+2], uint16(keyOff))
		testEndian.PutUint16(block[tocOff+2:tocOff+4], uint16(valOff))
		keyOff += len(entry.key)
	}

	sealBlock(t, block)
}

// writePhysicalMap fills a block with a checkpoint physical map.
func (img *testImage) writePhysicalMap(t *testing.T, at uint64, mappings map[uint64]uint64) {
	t.Helper()
	block := img.blocks[at]

	testEndian.PutUint64(block[8:16], at)
	testEndian.PutUint64(block[16:24], 11)
	testEndian.PutUint32(block[24:28], types.PhysicalMapBlockType)

	testEndian.PutUint32(block[32:36], types.PhysicalMapLast)
	testEndian.PutUint32(block[36:40], uint32(len(mappings)))

	offset := types.PhysicalMapHeaderSize
	for oid, paddr := range mappings {
		testEndian.PutUint32(block[offset:offset+4], types.ObjEphemeral|types.ObjectTypeSpaceman)
		testEndian.PutUint32(block[offset+8:offset+12], testBlockSize)
		testEndian.PutUint64(block[offset+24:offset+32], oid)
		testEndian.PutUint64(block[offset+32:offset+40], paddr)
		offset += types.PhysicalMapEntrySize
	}

	sealBlock(t, block)
}
