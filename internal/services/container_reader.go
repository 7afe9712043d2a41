// Package services wires the decoders to a block device and implements
// object and extent resolution on top of them.
package services

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/deploymenttheory/go-apfs-resolve/internal/interfaces"
	"github.com/deploymenttheory/go-apfs-resolve/internal/parsers/container"
	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// maxCacheBytes bounds the read-through block cache.
const maxCacheBytes = 50 * 1024 * 1024

// ContainerReader provides bounds-checked block access to a container
// image and holds its decoded superblock. It implements the BlockDevice
// interface. Reads through one ContainerReader are safe for concurrent use;
// the cache carries its own lock.
type ContainerReader struct {
	source        io.ReaderAt
	closer        io.Closer
	superblock    interfaces.ContainerSuperblockReader
	blockSize     uint32
	containerSize uint64
	endian        binary.ByteOrder

	mu               sync.RWMutex
	blockCache       map[uint64][]byte
	currentCacheSize int
}

// NewContainerReader opens a container image file and decodes its
// superblock from block zero.
func NewContainerReader(path string) (*ContainerReader, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: container image path is empty", types.ErrInvalidArgument)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container image: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat container image: %w", err)
	}

	cr, err := NewContainerReaderFromReaderAt(file, uint64(info.Size()))
	if err != nil {
		file.Close()
		return nil, err
	}
	cr.closer = file

	return cr, nil
}

// NewContainerReaderFromReaderAt builds a ContainerReader over an already
// open byte source of the given size.
func NewContainerReaderFromReaderAt(source io.ReaderAt, size uint64) (*ContainerReader, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil block source", types.ErrInvalidArgument)
	}

	// The superblock always sits at byte zero; its block-size field is
	// inside it, so bootstrap with the largest supported block size,
	// clipped to the image.
	probe := uint64(types.NxMaximumBlockSize)
	if probe > size {
		probe = size
	}
	superblockData := make([]byte, probe)
	if _, err := source.ReadAt(superblockData, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read superblock: %w", err)
	}

	sb, err := container.NewContainerSuperblockReader(superblockData, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("failed to decode container superblock: %w", err)
	}

	declared := sb.BlockCount() * uint64(sb.BlockSize())
	if declared > size {
		return nil, fmt.Errorf("%w: superblock declares %d bytes but the image holds %d",
			types.ErrOutOfBounds, declared, size)
	}

	return &ContainerReader{
		source:        source,
		superblock:    sb,
		blockSize:     sb.BlockSize(),
		containerSize: size,
		endian:        binary.LittleEndian,
		blockCache:    make(map[uint64][]byte),
	}, nil
}

// ReadBlock reads the block at the given physical address in full. A short
// read is an I/O error, not a partial result.
func (cr *ContainerReader) ReadBlock(address uint64) ([]byte, error) {
	cr.mu.RLock()
	if cached, ok := cr.blockCache[address]; ok {
		cr.mu.RUnlock()
		return append([]byte{}, cached...), nil
	}
	cr.mu.RUnlock()

	if address >= cr.superblock.BlockCount() {
		return nil, fmt.Errorf("%w: block %d with %d blocks in the container",
			types.ErrOutOfBounds, address, cr.superblock.BlockCount())
	}

	offset := int64(address) * int64(cr.blockSize)
	blockData := make([]byte, cr.blockSize)
	n, err := cr.source.ReadAt(blockData, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read block %d: %w", address, err)
	}
	if n < int(cr.blockSize) {
		return nil, fmt.Errorf("short read of block %d: got %d of %d bytes", address, n, cr.blockSize)
	}

	cr.mu.Lock()
	cr.cacheBlock(address, blockData)
	cr.mu.Unlock()

	return append([]byte{}, blockData...), nil
}

// cacheBlock stores a copy of a block, flushing the cache when it would
// exceed its size bound. Callers must hold mu.
func (cr *ContainerReader) cacheBlock(address uint64, data []byte) {
	if cr.currentCacheSize+len(data) > maxCacheBytes {
		cr.blockCache = make(map[uint64][]byte)
		cr.currentCacheSize = 0
	}
	cr.blockCache[address] = append([]byte{}, data...)
	cr.currentCacheSize += len(data)
}

// BlockSize returns the container's logical block size.
func (cr *ContainerReader) BlockSize() uint32 {
	return cr.blockSize
}

// BlockCount returns the number of addressable blocks.
func (cr *ContainerReader) BlockCount() uint64 {
	return cr.superblock.BlockCount()
}

// Superblock returns the decoded container superblock.
func (cr *ContainerReader) Superblock() interfaces.ContainerSuperblockReader {
	return cr.superblock
}

// Endian returns the byte order used in the container.
func (cr *ContainerReader) Endian() binary.ByteOrder {
	return cr.endian
}

// ClearCache drops all cached blocks.
func (cr *ContainerReader) ClearCache() {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.blockCache = make(map[uint64][]byte)
	cr.currentCacheSize = 0
}

// Close releases the underlying file, if this reader owns one.
func (cr *ContainerReader) Close() error {
	if cr.closer != nil {
		return cr.closer.Close()
	}
	return nil
}
