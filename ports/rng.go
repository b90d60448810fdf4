package ports

// RandomSource is a reproducible stream of draws.
type RandomSource interface {
	// Random advances the stream and returns a draw in [0, 1).
	Random() float64

	// RandomInt returns an integer in [min, max], both bounds inclusive.
	RandomInt(min, max int) int
}

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic stream from a seed of arbitrary type:
	// a string, a number, a structured record or nil.
	SeededStream(seed any) RandomSource
}
