package decoder

// ForEachDataModule calls fn for every non-reserved module of version v in
// codeword bit order: column pairs from the right edge leftwards, skipping
// the vertical timing column, alternating upwards and downwards, right
// column before left within a row.
func ForEachDataModule(v *Version, fn func(x, y int)) {
	dim := v.DimensionForVersion()
	reserved := v.FunctionPattern()
	up := true
	for right := dim - 1; right > 0; right -= 2 {
		if right == 6 {
			right--
		}
		for i := 0; i < dim; i++ {
			y := i
			if up {
				y = dim - 1 - i
			}
			for x := right; x > right-2; x-- {
				if !reserved.Get(x, y) {
					fn(x, y)
				}
			}
		}
		up = !up
	}
}
