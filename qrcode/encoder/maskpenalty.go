package encoder

import "github.com/skykywind/qrcodec/bitutil"

// Penalty weights.
const (
	penaltyN1 = 3
	penaltyN2 = 3
	penaltyN3 = 40
	penaltyN4 = 10
)

// CalculateMaskPenalty scores a masked grid; lower is better.
func CalculateMaskPenalty(m *bitutil.BitMatrix) int {
	return applyMaskPenaltyRule1(m) + applyMaskPenaltyRule2(m) + applyMaskPenaltyRule3(m) + applyMaskPenaltyRule4(m)
}

// applyMaskPenaltyRule1 penalises runs of five or more same-colour modules
// in rows and columns: N1 plus one per module beyond five.
func applyMaskPenaltyRule1(m *bitutil.BitMatrix) int {
	return rule1(m, true) + rule1(m, false)
}

func rule1(m *bitutil.BitMatrix, horizontal bool) int {
	dim := m.Height()
	penalty := 0
	for i := 0; i < dim; i++ {
		run := 0
		var prev bool
		for j := 0; j < dim; j++ {
			var bit bool
			if horizontal {
				bit = m.Get(j, i)
			} else {
				bit = m.Get(i, j)
			}
			if j > 0 && bit == prev {
				run++
				continue
			}
			if run >= 5 {
				penalty += penaltyN1 + run - 5
			}
			run = 1
			prev = bit
		}
		if run >= 5 {
			penalty += penaltyN1 + run - 5
		}
	}
	return penalty
}

// applyMaskPenaltyRule2 adds N2 for every 2x2 block of one colour,
// overlapping blocks counted separately.
func applyMaskPenaltyRule2(m *bitutil.BitMatrix) int {
	dim := m.Height()
	penalty := 0
	for y := 0; y < dim-1; y++ {
		for x := 0; x < dim-1; x++ {
			v := m.Get(x, y)
			if v == m.Get(x+1, y) && v == m.Get(x, y+1) && v == m.Get(x+1, y+1) {
				penalty += penaltyN2
			}
		}
	}
	return penalty
}

// finderLike is dark-light-dark-dark-dark-light-dark.
var finderLike = [7]bool{true, false, true, true, true, false, true}

// applyMaskPenaltyRule3 adds N3 for every 1:1:3:1:1 pattern in a row or
// column with four light modules before or after it. Modules outside the
// grid count as light.
func applyMaskPenaltyRule3(m *bitutil.BitMatrix) int {
	dim := m.Height()
	penalty := 0
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			row := func(i int) bool { return m.Get(i, y) }
			col := func(i int) bool { return m.Get(x, i) }
			if x+6 < dim && matchesAt(row, x) && (isLight(row, dim, x-4, x) || isLight(row, dim, x+7, x+11)) {
				penalty += penaltyN3
			}
			if y+6 < dim && matchesAt(col, y) && (isLight(col, dim, y-4, y) || isLight(col, dim, y+7, y+11)) {
				penalty += penaltyN3
			}
		}
	}
	return penalty
}

func matchesAt(get func(int) bool, start int) bool {
	for k, dark := range finderLike {
		if get(start+k) != dark {
			return false
		}
	}
	return true
}

// isLight reports whether modules [from, to) are light, clipped to the grid.
func isLight(get func(int) bool, dim, from, to int) bool {
	from = max(from, 0)
	to = min(to, dim)
	for i := from; i < to; i++ {
		if get(i) {
			return false
		}
	}
	return true
}

// applyMaskPenaltyRule4 adds N4 for every full 5% the dark proportion
// deviates from one half.
func applyMaskPenaltyRule4(m *bitutil.BitMatrix) int {
	total := m.Width() * m.Height()
	dark := m.Count()
	diff := dark*2 - total
	if diff < 0 {
		diff = -diff
	}
	return diff * 10 / total * penaltyN4
}
