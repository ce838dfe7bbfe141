package reedsolomon

import "sync"

// Encoder computes Reed-Solomon parity codewords. Generator polynomials are
// built on demand and cached; an Encoder is safe for concurrent use.
type Encoder struct {
	field *Field

	mu         sync.Mutex
	generators []*Poly
}

// NewEncoder creates an Encoder over field.
func NewEncoder(field *Field) *Encoder {
	return &Encoder{field: field, generators: []*Poly{field.one}}
}

// generator returns prod_{i<degree} (x - alpha^(base+i)).
func (e *Encoder) generator(degree int) *Poly {
	e.mu.Lock()
	defer e.mu.Unlock()
	for d := len(e.generators); d <= degree; d++ {
		root := e.field.Exp(d - 1 + e.field.generatorBase)
		next := e.generators[d-1].Multiply(newPoly(e.field, []byte{1, root}))
		e.generators = append(e.generators, next)
	}
	return e.generators[degree]
}

// Encode returns the ecCount parity codewords for data: the remainder of
// data(x) * x^ecCount divided by the generator polynomial.
func (e *Encoder) Encode(data []byte, ecCount int) []byte {
	if ecCount <= 0 {
		panic("reedsolomon: no error correction codewords")
	}
	if len(data) == 0 {
		panic("reedsolomon: no data codewords")
	}
	gen := e.generator(ecCount).coefficients // gen[0] == 1
	rem := make([]byte, ecCount)
	for _, d := range data {
		factor := d ^ rem[0]
		copy(rem, rem[1:])
		rem[ecCount-1] = 0
		if factor == 0 {
			continue
		}
		for i := 0; i < ecCount; i++ {
			rem[i] ^= e.field.Multiply(gen[i+1], factor)
		}
	}
	return rem
}
