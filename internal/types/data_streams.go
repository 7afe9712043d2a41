package types

// JKeyT is the header every file-system record key starts with: the owning
// object identifier packed together with the record type.
type JKeyT struct {
	// The object identifier in the low 60 bits and the record type in the
	// high 4 bits.
	ObjIdAndType uint64
}

// ObjIdMask is the bit mask used to access the object identifier of a
// record key header.
const ObjIdMask uint64 = 0x0fffffffffffffff

// ObjTypeMask is the bit mask used to access the record type of a record
// key header.
const ObjTypeMask uint64 = 0xf000000000000000

// ObjTypeShift is the bit shift used to access the record type of a record
// key header.
const ObjTypeShift = 60

// ApfsTypeFileExtent is the record type of a file-extent record.
const ApfsTypeFileExtent uint64 = 8

// JFileExtentKeyT is the key half of a file-extent record: the owning file
// and the logical offset the extent starts at.
type JFileExtentKeyT struct {
	// The record key header.
	Hdr JKeyT
	// The offset within the file's data, in bytes.
	LogicalAddr uint64
}

// JFileExtentValT is the value half of a file-extent record.
type JFileExtentValT struct {
	// The extent's length in the low 56 bits and its flags in the high 8 bits.
	LenAndFlags uint64
	// The physical block address the extent starts at. Ignored when the
	// length is zero, which denotes a hole.
	PhysBlockNum uint64
	// The encryption key or tweak used for this extent.
	CryptoId uint64
}

// JFileExtentKeySize and JFileExtentValSize are the encoded sizes of the
// two halves of a file-extent record.
const (
	JFileExtentKeySize = 16
	JFileExtentValSize = 24
)

// JFileExtentLenMask is the bit mask used to access a file extent's length.
const JFileExtentLenMask uint64 = 0x00ffffffffffffff

// JFileExtentFlagMask is the bit mask used to access a file extent's flags.
const JFileExtentFlagMask uint64 = 0xff00000000000000

// JFileExtentFlagShift is the bit shift used to access a file extent's flags.
const JFileExtentFlagShift = 56

// FextCryptoIdIsTweak indicates that the crypto_id field holds an
// encryption tweak value rather than a key identifier.
const FextCryptoIdIsTweak uint32 = 0x01
