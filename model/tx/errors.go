package tx

import "errors"

var (
	// ErrCommitmentMismatch is returned by Commitment.Expand when the
	// supplied bytes do not hash to the held digest.
	ErrCommitmentMismatch = errors.New("commitment does not match supplied bytes")

	// ErrMissingData marks a signature check that could not even start: the
	// signature bytes are absent or a signing index resolves to no known key.
	ErrMissingData = errors.New("signature data missing")

	// ErrInvalidSectionSignature covers every way a multisignature section
	// can fail authorization: missing targets, missing sections, too many or
	// too few signatures.
	ErrInvalidSectionSignature = errors.New("invalid section signature")

	// ErrInvalidWrapperSignature is returned when no signature section
	// authorizes the full transaction under the expected key.
	ErrInvalidWrapperSignature = errors.New("invalid wrapper signature")

	// ErrDecoding is returned when the outer wire envelope is malformed.
	ErrDecoding = errors.New("malformed transaction envelope")

	// ErrDeserializing is returned when the envelope payload is not a
	// canonical transaction encoding.
	ErrDeserializing = errors.New("malformed transaction payload")

	// ErrOfflineDeserialization is returned when the hex transport form of a
	// transaction or signature cannot be decoded.
	ErrOfflineDeserialization = errors.New("malformed offline transaction encoding")
)
