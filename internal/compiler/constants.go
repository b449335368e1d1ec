package compiler

// NoKind marks a state or position that accepts no token.
const NoKind = -1

// NoState marks a missing state id.
const NoState = -1

// ASCII boundary constants
const (
	// MaxASCIIRune is the exclusive upper bound for ASCII characters.
	// Runes with value < MaxASCIIRune are ASCII.
	MaxASCIIRune = 128

	// WordBits is the number of characters covered by one move word.
	WordBits = 64
)

// Non-ASCII partitioning constants. A 16-bit character is split into a
// high byte selecting a 256-bit vector and a low byte indexing into it.
const (
	// VectorWords is the number of 64-bit words in a low-byte vector.
	VectorWords = 4

	// HighByteShift extracts the high byte of a character.
	HighByteShift = 8

	// LowByteMask extracts the low byte of a character.
	LowByteMask = 0xFF
)
