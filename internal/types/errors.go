package types

import "errors"

// Decode and resolution error kinds. Decoders and resolvers wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify failures with errors.Is
// while still getting the offending offset or tag in the message.
var (
	// ErrInvalidArgument indicates a nil or otherwise unusable caller-supplied value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidFormat indicates a magic or fixed field that does not match the format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnsupportedType indicates an object-type tag other than the expected constant.
	ErrUnsupportedType = errors.New("unsupported object type")

	// ErrOutOfBounds indicates a declared size or count that exceeds a structural limit.
	ErrOutOfBounds = errors.New("value out of bounds")

	// ErrTruncated indicates fewer bytes than the structure requires.
	ErrTruncated = errors.New("truncated data")

	// ErrInvalidChecksum indicates a Fletcher-64 mismatch on a structural node.
	ErrInvalidChecksum = errors.New("checksum mismatch")

	// ErrStructural indicates a violated traversal invariant, such as a depth overrun.
	ErrStructural = errors.New("structural invariant violated")

	// ErrNotFound is a well-formed negative lookup result. It is never a
	// corruption signal: callers use it to fall back to another resolution
	// path or to report a missing object.
	ErrNotFound = errors.New("not found")
)
