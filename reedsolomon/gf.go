// Package reedsolomon implements Reed-Solomon coding over GF(256) as used by
// QR code symbols.
package reedsolomon

import (
	"fmt"
	"sync"
)

// Field is GF(256) built from a primitive polynomial. A Field is immutable
// after construction and safe for concurrent use.
type Field struct {
	exp           [512]byte // two periods so products need no modulo
	log           [256]int
	zero          *Poly
	one           *Poly
	primitive     int
	generatorBase int
}

var qrField = sync.OnceValue(func() *Field {
	return NewField(0x011D, 0) // x^8 + x^4 + x^3 + x^2 + 1
})

// QRCodeField256 returns the field used by QR codes. It is built on first
// use and shared afterwards.
func QRCodeField256() *Field {
	return qrField()
}

// NewField builds GF(256) from primitive. generatorBase is the exponent of
// the first root of generator polynomials (b in alpha^(b+i)).
func NewField(primitive, generatorBase int) *Field {
	f := &Field{primitive: primitive, generatorBase: generatorBase}
	x := 1
	for i := 0; i < 255; i++ {
		f.exp[i] = byte(x)
		f.exp[i+255] = byte(x)
		x <<= 1
		if x >= 256 {
			x ^= primitive
		}
	}
	f.exp[510], f.exp[511] = f.exp[0], f.exp[1]
	for i := 0; i < 255; i++ {
		f.log[f.exp[i]] = i
	}
	f.zero = &Poly{field: f, coefficients: []byte{0}}
	f.one = &Poly{field: f, coefficients: []byte{1}}
	return f
}

// Exp returns alpha^a for 0 <= a < 510.
func (f *Field) Exp(a int) byte {
	return f.exp[a]
}

// Log returns the discrete logarithm of a, which must be non-zero.
func (f *Field) Log(a byte) int {
	if a == 0 {
		panic("reedsolomon: log(0)")
	}
	return f.log[a]
}

// Inverse returns the multiplicative inverse of a, which must be non-zero.
func (f *Field) Inverse(a byte) byte {
	if a == 0 {
		panic("reedsolomon: inverse(0)")
	}
	return f.exp[255-f.log[a]]
}

// Multiply returns a*b.
func (f *Field) Multiply(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[f.log[a]+f.log[b]]
}

// GeneratorBase returns the exponent of the first generator root.
func (f *Field) GeneratorBase() int { return f.generatorBase }

func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,256)", f.primitive)
}

func (f *Field) monomial(degree int, coefficient byte) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return f.zero
	}
	c := make([]byte, degree+1)
	c[0] = coefficient
	return &Poly{field: f, coefficients: c}
}
