package binarizer

import (
	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

const (
	blockSizePower   = 3
	blockSize        = 1 << blockSizePower
	blockSizeMask    = blockSize - 1
	minimumDimension = blockSize * 5
	minDynamicRange  = 24
)

// Hybrid thresholds each 8x8 block against the mean black point of the 5x5
// blocks around it. Images under 40 pixels on a side are handed to the
// embedded GlobalHistogram. Rows are always thresholded globally.
type Hybrid struct {
	*GlobalHistogram
}

// NewHybrid creates a Hybrid binarizer over source.
func NewHybrid(source qrcodec.LuminanceSource) *Hybrid {
	return &Hybrid{GlobalHistogram: NewGlobalHistogram(source)}
}

// BlackMatrix returns the locally thresholded image.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	width, height := h.Width(), h.Height()
	if width < minimumDimension || height < minimumDimension {
		return h.GlobalHistogram.BlackMatrix()
	}

	lum := h.source.Matrix()
	g := blockGrid{
		lum:    lum,
		width:  width,
		height: height,
		cols:   (width + blockSizeMask) >> blockSizePower,
		rows:   (height + blockSizeMask) >> blockSizePower,
	}
	g.computeBlackPoints()

	m := bitutil.NewBitMatrixWithSize(width, height)
	for by := 0; by < g.rows; by++ {
		top := clamp(by, 2, g.rows-3)
		for bx := 0; bx < g.cols; bx++ {
			left := clamp(bx, 2, g.cols-3)
			sum := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					sum += g.blackPoint(left+dx, top+dy)
				}
			}
			g.threshold(bx, by, sum/25, m)
		}
	}
	return m, nil
}

// blockGrid holds per-block black points of a luminance buffer. Blocks on
// the right and bottom edge are shifted inwards to stay whole.
type blockGrid struct {
	lum           []byte
	width, height int
	cols, rows    int
	points        []int
}

func (g *blockGrid) blackPoint(bx, by int) int { return g.points[by*g.cols+bx] }

// origin returns the top-left pixel of block (bx, by).
func (g *blockGrid) origin(bx, by int) (int, int) {
	return min(bx<<blockSizePower, g.width-blockSize), min(by<<blockSizePower, g.height-blockSize)
}

func (g *blockGrid) computeBlackPoints() {
	g.points = make([]int, g.cols*g.rows)
	for by := 0; by < g.rows; by++ {
		for bx := 0; bx < g.cols; bx++ {
			x0, y0 := g.origin(bx, by)
			sum, lo, hi := 0, 0xFF, 0
			for y := 0; y < blockSize; y++ {
				off := (y0+y)*g.width + x0
				for _, p := range g.lum[off : off+blockSize] {
					sum += int(p)
					lo = min(lo, int(p))
					hi = max(hi, int(p))
				}
			}

			bp := sum >> (2 * blockSizePower)
			if hi-lo <= minDynamicRange {
				// Flat block: assume it is light and put the black point
				// below it, unless the neighbours say the block is dark.
				bp = lo / 2
				if by > 0 && bx > 0 {
					neighbours := (g.blackPoint(bx, by-1) + 2*g.blackPoint(bx-1, by) + g.blackPoint(bx-1, by-1)) / 4
					if lo < neighbours {
						bp = neighbours
					}
				}
			}
			g.points[by*g.cols+bx] = bp
		}
	}
}

// threshold marks the pixels of block (bx, by) at or below t as dark.
func (g *blockGrid) threshold(bx, by, t int, m *bitutil.BitMatrix) {
	x0, y0 := g.origin(bx, by)
	for y := 0; y < blockSize; y++ {
		off := (y0+y)*g.width + x0
		for x, p := range g.lum[off : off+blockSize] {
			if int(p) <= t {
				m.Set(x0+x, y0+y)
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// New returns the binarizer for the given thresholding mode.
func New(source qrcodec.LuminanceSource, mode qrcodec.Thresholding) qrcodec.Binarizer {
	if mode == qrcodec.ThresholdGlobal {
		return NewGlobalHistogram(source)
	}
	return NewHybrid(source)
}
