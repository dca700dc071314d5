package pipeline

import (
	"math/rand/v2"

	"github.com/matzehuels/seamline/pkg/pattern"
)

// Instantiate moves s to the instance described by opts. With Restore set the
// stored values are undone and reset to the identity first. With Randomize set
// every parameter is drawn from its range using Seed, and explicit Values then
// override the drawn ones.
func Instantiate(s *pattern.Spec, opts Options) error {
	values, err := ParseValues(opts.Values)
	if err != nil {
		return err
	}
	if opts.Restore {
		if err := s.RestoreTemplate(true); err != nil {
			return err
		}
	}
	if !opts.Randomize {
		if len(values) == 0 {
			return nil
		}
		return s.Apply(values)
	}

	if err := s.RestoreTemplate(false); err != nil {
		return err
	}
	if err := s.RandomizeParameters(newRand(opts.seed())); err != nil {
		return err
	}
	if err := s.SetValues(values); err != nil {
		return err
	}
	return s.ApplyAll()
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
