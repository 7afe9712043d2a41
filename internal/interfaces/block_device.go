// Package interfaces declares the contracts between the decoders, the
// block-level readers and the resolution services.
package interfaces

// BlockDevice is the byte source every resolver reads through. Block reads
// are bounded, direct and synchronous; I/O failures are reported distinctly
// from decode errors so callers can tell a bad device from bad data.
type BlockDevice interface {
	// ReadBlock reads the block at the given physical address in full.
	ReadBlock(address uint64) ([]byte, error)

	// BlockSize returns the device's logical block size in bytes.
	BlockSize() uint32

	// BlockCount returns the number of addressable blocks.
	BlockCount() uint64
}
