package game

import (
	"fmt"
	"math/rand/v2"
)

// RandomSource is the only source of randomness the engine uses.
type RandomSource interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// pcgSource is a seeded PCG whose state round-trips through MatchState.RNG.
type pcgSource struct {
	pcg *rand.PCG
	*rand.Rand
}

func newPCGSource(seed uint64) *pcgSource {
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &pcgSource{pcg: pcg, Rand: rand.New(pcg)}
}

// restorePCGSource rebuilds a source from serialized state.
func restorePCGSource(state []byte) (*pcgSource, error) {
	pcg := &rand.PCG{}
	if err := pcg.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("restore rng: %w", err)
	}
	return &pcgSource{pcg: pcg, Rand: rand.New(pcg)}, nil
}

func (s *pcgSource) marshal() []byte {
	b, err := s.pcg.MarshalBinary()
	if err != nil {
		// PCG.MarshalBinary cannot fail
		panic(err)
	}
	return b
}

// shuffleIDs shuffles a zone in place.
func shuffleIDs(rng RandomSource, ids []int) {
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
