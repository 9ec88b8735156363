package core

// Descriptor is a bitset chosen from a closed set of flags that override the
// default behavior of a primitive. Unknown bits are rejected by Valid().
type Descriptor uint32

// Recognized descriptor bits.
const (
	// NoOperation requests that the primitive perform no work.
	NoOperation Descriptor = 1 << iota

	// NoCasting requires domain identity across all operands.
	NoCasting

	// Dense asserts that all operands are structurally full. A sparse
	// operand under this assertion yields Illegal.
	Dense

	// InvertMask negates the mask condition.
	InvertMask

	// Structural makes masks act on structure only; stored values are
	// ignored.
	Structural

	// TransposeMatrix flips the (left or only) matrix operand.
	TransposeMatrix

	// TransposeRight flips the right matrix operand of a matrix-matrix
	// primitive.
	TransposeRight

	// SafeOverlap asserts the caller guarantees output is not harmfully
	// aliased with any input.
	SafeOverlap

	// UseIndex uses the coordinate index as the input value.
	UseIndex

	descriptorEnd
)

// DefaultDescriptor carries no modifier bits.
const DefaultDescriptor Descriptor = 0

// Has reports whether every bit of d2 is set in d.
func (d Descriptor) Has(d2 Descriptor) bool { return d&d2 == d2 }

// Valid reports whether d only uses recognized bits.
func (d Descriptor) Valid() bool { return d < descriptorEnd }
