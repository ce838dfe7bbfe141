package reedsolomon

import (
	"errors"
	"fmt"
)

// ErrReedSolomon is returned when a received word cannot be corrected.
var ErrReedSolomon = errors.New("reedsolomon: decoding error")

// Decoder corrects errors in received Reed-Solomon words.
type Decoder struct {
	field *Field
}

// NewDecoder creates a Decoder over field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place, where the last twoS codewords are
// parity, and returns the number of corrected codewords. Up to twoS/2
// errors are always corrected; beyond that ErrReedSolomon is returned unless
// the word happens to lie within twoS/2 of another codeword.
func (d *Decoder) Decode(received []byte, twoS int) (int, error) {
	f := d.field
	poly := newPoly(f, received)
	syndromes := make([]byte, twoS)
	clean := true
	for i := 0; i < twoS; i++ {
		s := poly.EvaluateAt(f.Exp(i + f.generatorBase))
		syndromes[twoS-1-i] = s
		if s != 0 {
			clean = false
		}
	}
	if clean {
		return 0, nil
	}

	sigma, omega, err := d.euclidean(f.monomial(twoS, 1), newPoly(f, syndromes), twoS)
	if err != nil {
		return 0, err
	}
	locations, err := d.errorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes := d.errorMagnitudes(omega, locations)
	for i, loc := range locations {
		pos := len(received) - 1 - f.Log(loc)
		if pos < 0 {
			return 0, fmt.Errorf("%w: bad error location", ErrReedSolomon)
		}
		received[pos] ^= magnitudes[i]
	}
	return len(locations), nil
}

// euclidean runs the extended Euclidean algorithm on x^R and the syndrome
// polynomial until the remainder degree drops below R/2, returning the error
// locator sigma and the error evaluator omega.
func (d *Decoder) euclidean(a, b *Poly, R int) (sigma, omega *Poly, err error) {
	f := d.field
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	rLast, r := a, b
	tLast, t := f.zero, f.one

	for 2*r.Degree() >= R {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t
		if rLast.IsZero() {
			return nil, nil, fmt.Errorf("%w: r_{i-1} was zero", ErrReedSolomon)
		}
		r = rLastLast
		q := f.zero
		dltInverse := f.Inverse(rLast.Coefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			diff := r.Degree() - rLast.Degree()
			scale := f.Multiply(r.Coefficient(r.Degree()), dltInverse)
			q = q.Add(f.monomial(diff, scale))
			r = r.Add(rLast.MultiplyByMonomial(diff, scale))
		}
		t = q.Multiply(tLast).Add(tLastLast)
		if r.Degree() >= rLast.Degree() {
			return nil, nil, fmt.Errorf("%w: division did not reduce degree", ErrReedSolomon)
		}
	}

	sigmaAtZero := t.Coefficient(0)
	if sigmaAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: sigma(0) was zero", ErrReedSolomon)
	}
	inv := f.Inverse(sigmaAtZero)
	return t.Scale(inv), r.Scale(inv), nil
}

// errorLocations finds the inverses of the roots of sigma by Chien search.
func (d *Decoder) errorLocations(sigma *Poly) ([]byte, error) {
	n := sigma.Degree()
	if n == 1 {
		return []byte{sigma.Coefficient(1)}, nil
	}
	out := make([]byte, 0, n)
	for i := 1; i < 256 && len(out) < n; i++ {
		if sigma.EvaluateAt(byte(i)) == 0 {
			out = append(out, d.field.Inverse(byte(i)))
		}
	}
	if len(out) != n {
		return nil, fmt.Errorf("%w: locator degree does not match number of roots", ErrReedSolomon)
	}
	return out, nil
}

// errorMagnitudes applies Forney's formula.
func (d *Decoder) errorMagnitudes(omega *Poly, locations []byte) []byte {
	f := d.field
	out := make([]byte, len(locations))
	for i, xi := range locations {
		xiInv := f.Inverse(xi)
		var denom byte = 1
		for j, xj := range locations {
			if i != j {
				denom = f.Multiply(denom, 1^f.Multiply(xj, xiInv))
			}
		}
		out[i] = f.Multiply(omega.EvaluateAt(xiInv), f.Inverse(denom))
		if f.generatorBase != 0 {
			out[i] = f.Multiply(out[i], xiInv)
		}
	}
	return out
}
