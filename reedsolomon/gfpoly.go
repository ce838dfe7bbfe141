package reedsolomon

// Poly is an immutable polynomial over a Field. Coefficients are stored from
// the highest degree down, without leading zeros except for the zero
// polynomial itself.
type Poly struct {
	field        *Field
	coefficients []byte
}

func newPoly(field *Field, coefficients []byte) *Poly {
	if len(coefficients) == 0 {
		panic("reedsolomon: empty coefficients")
	}
	i := 0
	for i < len(coefficients)-1 && coefficients[i] == 0 {
		i++
	}
	return &Poly{field: field, coefficients: coefficients[i:]}
}

// Degree returns the degree of p.
func (p *Poly) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool {
	return p.coefficients[0] == 0
}

// Coefficient returns the coefficient of x^degree.
func (p *Poly) Coefficient(degree int) byte {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates p at a using Horner's rule.
func (p *Poly) EvaluateAt(a byte) byte {
	if a == 0 {
		return p.Coefficient(0)
	}
	var result byte
	for _, c := range p.coefficients {
		result = p.field.Multiply(result, a) ^ c
	}
	return result
}

// Add returns p+q, which is also p-q in characteristic 2.
func (p *Poly) Add(q *Poly) *Poly {
	if p.IsZero() {
		return q
	}
	if q.IsZero() {
		return p
	}
	small, large := p.coefficients, q.coefficients
	if len(small) > len(large) {
		small, large = large, small
	}
	sum := make([]byte, len(large))
	diff := len(large) - len(small)
	copy(sum, large[:diff])
	for i := diff; i < len(large); i++ {
		sum[i] = small[i-diff] ^ large[i]
	}
	return newPoly(p.field, sum)
}

// Multiply returns p*q.
func (p *Poly) Multiply(q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return p.field.zero
	}
	product := make([]byte, len(p.coefficients)+len(q.coefficients)-1)
	for i, a := range p.coefficients {
		for j, b := range q.coefficients {
			product[i+j] ^= p.field.Multiply(a, b)
		}
	}
	return newPoly(p.field, product)
}

// Scale returns p*s.
func (p *Poly) Scale(s byte) *Poly {
	switch s {
	case 0:
		return p.field.zero
	case 1:
		return p
	}
	product := make([]byte, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, s)
	}
	return newPoly(p.field, product)
}

// MultiplyByMonomial returns p * coefficient * x^degree.
func (p *Poly) MultiplyByMonomial(degree int, coefficient byte) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return p.field.zero
	}
	product := make([]byte, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}
