package detector

import (
	"fmt"
	"math"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

// AlignmentPattern is a located alignment pattern centre.
type AlignmentPattern struct {
	qrcodec.ResultPoint
	EstimatedModuleSize float64
}

func (ap *AlignmentPattern) aboutEquals(moduleSize, x, y float64) bool {
	if math.Abs(y-ap.Y) > moduleSize || math.Abs(x-ap.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - ap.EstimatedModuleSize)
	return diff <= 1 || diff <= ap.EstimatedModuleSize
}

// alignmentFinder looks for the dark centre module of an alignment pattern
// inside a search window. It matches the light/dark/light 1:1:1 runs of the
// centre and the ring around it, since the outer dark ring may touch other
// dark modules.
type alignmentFinder struct {
	image         *bitutil.BitMatrix
	left, top     int
	width, height int
	moduleSize    float64
	centers       []*AlignmentPattern
}

// find scans rows outward from the middle of the window. A centre seen on
// two rows wins immediately; otherwise the first one seen is returned.
func (f *alignmentFinder) find() (*AlignmentPattern, error) {
	right := f.left + f.width
	middleY := f.top + f.height/2
	for n := 0; n < f.height; n++ {
		y := middleY + (n+1)/2
		if n&1 == 1 {
			y = middleY - (n+1)/2
		}

		var runs [3]int
		x := f.left
		// A light run that starts at the window edge has unknown length.
		for x < right && !f.image.Get(x, y) {
			x++
		}
		state := 0
		for ; x < right; x++ {
			if !f.image.Get(x, y) {
				if state == 1 {
					state++
				}
				runs[state]++
				continue
			}
			switch state {
			case 1:
				runs[1]++
			case 2:
				if f.foundPatternCross(runs) {
					if ap := f.handlePossibleCenter(runs, x, y); ap != nil {
						return ap, nil
					}
				}
				runs = [3]int{runs[2], 1, 0}
				state = 1
			default:
				state++
				runs[state]++
			}
		}
		if f.foundPatternCross(runs) {
			if ap := f.handlePossibleCenter(runs, right, y); ap != nil {
				return ap, nil
			}
		}
	}
	if len(f.centers) > 0 {
		return f.centers[0], nil
	}
	return nil, fmt.Errorf("%w: no alignment pattern near (%d,%d)", qrcodec.ErrNotFound, f.left+f.width/2, middleY)
}

func (f *alignmentFinder) foundPatternCross(runs [3]int) bool {
	maxVariance := f.moduleSize / 2
	for _, n := range runs {
		if math.Abs(f.moduleSize-float64(n)) >= maxVariance {
			return false
		}
	}
	return true
}

// crossCheckVertical measures the light/dark/light runs through (x, startY)
// and returns the centre row of the dark run, or NaN.
func (f *alignmentFinder) crossCheckVertical(startY, x, maxCount, originalTotal int) float64 {
	maxY := f.image.Height()
	var runs [3]int

	y := startY
	for ; y >= 0 && f.image.Get(x, y) && runs[1] <= maxCount; y-- {
		runs[1]++
	}
	if y < 0 || runs[1] > maxCount {
		return math.NaN()
	}
	for ; y >= 0 && !f.image.Get(x, y) && runs[0] <= maxCount; y-- {
		runs[0]++
	}
	if runs[0] > maxCount {
		return math.NaN()
	}

	y = startY + 1
	for ; y < maxY && f.image.Get(x, y) && runs[1] <= maxCount; y++ {
		runs[1]++
	}
	if y == maxY || runs[1] > maxCount {
		return math.NaN()
	}
	for ; y < maxY && !f.image.Get(x, y) && runs[2] <= maxCount; y++ {
		runs[2]++
	}
	if runs[2] > maxCount {
		return math.NaN()
	}

	total := runs[0] + runs[1] + runs[2]
	if 5*abs(total-originalTotal) >= 2*originalTotal || !f.foundPatternCross(runs) {
		return math.NaN()
	}
	return float64(y-runs[2]) - float64(runs[1])/2
}

// handlePossibleCenter confirms a row hit ending just before x. It returns
// the pattern once the same centre has been seen twice.
func (f *alignmentFinder) handlePossibleCenter(runs [3]int, x, y int) *AlignmentPattern {
	total := runs[0] + runs[1] + runs[2]
	centerX := float64(x-runs[2]) - float64(runs[1])/2
	centerY := f.crossCheckVertical(y, int(centerX), 2*runs[1], total)
	if math.IsNaN(centerY) {
		return nil
	}
	moduleSize := float64(total) / 3
	for _, c := range f.centers {
		if c.aboutEquals(moduleSize, centerX, centerY) {
			return &AlignmentPattern{
				ResultPoint: qrcodec.ResultPoint{
					X: (c.X + centerX) / 2,
					Y: (c.Y + centerY) / 2,
				},
				EstimatedModuleSize: (c.EstimatedModuleSize + moduleSize) / 2,
			}
		}
	}
	f.centers = append(f.centers, &AlignmentPattern{
		ResultPoint:         qrcodec.ResultPoint{X: centerX, Y: centerY},
		EstimatedModuleSize: moduleSize,
	})
	return nil
}
