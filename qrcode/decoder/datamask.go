package decoder

import "github.com/skykywind/qrcodec/bitutil"

// NumMaskPatterns is the number of data mask patterns.
const NumMaskPatterns = 8

// MaskBit reports whether data mask pattern mask inverts the module at
// column x, row y.
func MaskBit(mask, x, y int) bool {
	switch mask {
	case 0:
		return (y+x)%2 == 0
	case 1:
		return y%2 == 0
	case 2:
		return x%3 == 0
	case 3:
		return (y+x)%3 == 0
	case 4:
		return (y/2+x/3)%2 == 0
	case 5:
		return (y*x)%2+(y*x)%3 == 0
	case 6:
		return ((y*x)%2+(y*x)%3)%2 == 0
	case 7:
		return ((y+x)%2+(y*x)%3)%2 == 0
	}
	panic("decoder: invalid mask pattern")
}

// MaskMatrix returns the modules that mask inverts in a symbol of version
// v. Function pattern modules are never inverted.
func MaskMatrix(v *Version, mask int) *bitutil.BitMatrix {
	dim := v.DimensionForVersion()
	reserved := v.FunctionPattern()
	m := bitutil.NewBitMatrix(dim)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			if !reserved.Get(x, y) && MaskBit(mask, x, y) {
				m.Set(x, y)
			}
		}
	}
	return m
}
