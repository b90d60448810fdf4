// Package rng implements the seeded generator used for bonus round selection.
//
// The generator is a Park–Miller minimal standard LCG. Bonus rounds already
// paid out were drawn with it, so its arithmetic (including the fixed point at
// a zero seed) must stay exactly as it is for payouts to remain verifiable.
package rng

import (
	"math"

	"forecastbonus/ports"
)

const (
	// Multiplier of the minimal standard generator.
	Multiplier = 16807
	// Modulus is the Mersenne prime 2^31 - 1.
	Modulus = 2147483647
)

// Lehmer is a multiplicative linear congruential generator. State is held as a
// float64 so that numeric seeds outside the int32 range follow the same
// floating point remainder the survey client used.
type Lehmer struct {
	state float64
}

// NewLehmer hashes seed and advances the generator once before any caller
// visible draw.
func NewLehmer(seed any) *Lehmer {
	l := &Lehmer{state: HashSeed(seed)}
	l.next()
	return l
}

func (l *Lehmer) next() float64 {
	l.state = math.Mod(l.state*Multiplier, Modulus)
	return l.state / Modulus
}

// State returns the current generator state.
func (l *Lehmer) State() float64 {
	return l.state
}

// Random advances the generator and returns state / modulus.
func (l *Lehmer) Random() float64 {
	return l.next()
}

// RandomInt returns floor(random * (max - min + 1)) + min.
func (l *Lehmer) RandomInt(min, max int) int {
	return int(math.Floor(l.Random()*float64(max-min+1))) + min
}

// Adapter implements ports.RNGPort with Lehmer streams.
type Adapter struct{}

// NewAdapter creates the generator adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a fresh Lehmer stream for seed.
func (a *Adapter) SeededStream(seed any) ports.RandomSource {
	return NewLehmer(seed)
}

var _ ports.RNGPort = (*Adapter)(nil)
