package rng

// FixedSource returns scripted values for deterministic tests, cycling
// when a sequence runs out.
type FixedSource struct {
	Ints   []int
	Floats []float64

	intIdx   int
	floatIdx int
}

func (f *FixedSource) Intn(n int) int {
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.intIdx%len(f.Ints)] % n
	f.intIdx++
	return v
}

func (f *FixedSource) Float64() float64 {
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[f.floatIdx%len(f.Floats)]
	f.floatIdx++
	return v
}
