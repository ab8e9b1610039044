package world

import "math/rand"

// rngSource is a splitmix64 generator used as the world's rand source.
// Its entire state is one uint64, so snapshots can carry it and a resumed
// world continues the exact random sequence of the world that wrote them.
type rngSource struct{ state uint64 }

func newRng(seed int64) (*rand.Rand, *rngSource) {
	src := &rngSource{state: uint64(seed)}
	return rand.New(src), src
}

func (s *rngSource) Seed(seed int64) { s.state = uint64(seed) }

func (s *rngSource) Uint64() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (s *rngSource) Int63() int64 { return int64(s.Uint64() >> 1) }
