package objects

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-apfs-resolve/internal/types"
)

// ComputeChecksum computes the Fletcher-64 checksum of a full object block.
// The first eight bytes hold the stored checksum and are excluded from the
// computation.
func ComputeChecksum(block []byte) ([types.MaxCksumSize]byte, error) {
	var checksum [types.MaxCksumSize]byte

	if len(block) < types.ObjPhysSize || len(block)%4 != 0 {
		// Fletcher-64 operates on 32-bit words.
		return checksum, fmt.Errorf("%w: block length %d not checksummable", types.ErrTruncated, len(block))
	}

	binary.LittleEndian.PutUint64(checksum[:], fletcher64(block[types.MaxCksumSize:]))
	return checksum, nil
}

// VerifyChecksum recomputes the Fletcher-64 checksum over a full object
// block and compares it against the stored header field. A mismatch is
// reported as types.ErrInvalidChecksum; resolution must not continue with
// unchecksummed data.
func VerifyChecksum(obj *types.ObjPhysT, block []byte) error {
	if obj == nil {
		return fmt.Errorf("%w: nil object header", types.ErrInvalidArgument)
	}

	expected, err := ComputeChecksum(block)
	if err != nil {
		return err
	}

	if obj.OChecksum != expected {
		return fmt.Errorf("%w: object %d stored %x, computed %x",
			types.ErrInvalidChecksum, obj.OOid, obj.OChecksum, expected)
	}
	return nil
}

// fletcher64 computes the APFS variant of the Fletcher-64 checksum: 32-bit
// little-endian words summed modulo 2^32-1, with the final value arranged
// so that a block prefixed with its own checksum sums to zero.
func fletcher64(data []byte) uint64 {
	const mod = uint64(0xFFFFFFFF)
	// Reduce every 1024 words so the running sums never overflow 64 bits.
	const chunkWords = 1024

	var sum1, sum2 uint64
	words := 0
	for i := 0; i+4 <= len(data); i += 4 {
		sum1 += uint64(binary.LittleEndian.Uint32(data[i : i+4]))
		sum2 += sum1
		words++
		if words == chunkWords {
			sum1 %= mod
			sum2 %= mod
			words = 0
		}
	}
	sum1 %= mod
	sum2 %= mod

	ck1 := mod - ((sum1 + sum2) % mod)
	ck2 := mod - ((sum1 + ck1) % mod)
	return (ck2 << 32) | ck1
}
