// Package binarizer converts luminance to dark and light pixels, either with
// one black point for the whole image or with black points per block.
package binarizer

import (
	"fmt"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// GlobalHistogram picks one black point from a coarse luminance histogram.
// It is fast but suffers under uneven lighting.
type GlobalHistogram struct {
	source qrcodec.LuminanceSource
}

// NewGlobalHistogram creates a GlobalHistogram over source.
func NewGlobalHistogram(source qrcodec.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

func (g *GlobalHistogram) LuminanceSource() qrcodec.LuminanceSource { return g.source }
func (g *GlobalHistogram) Width() int                               { return g.source.Width() }
func (g *GlobalHistogram) Height() int                              { return g.source.Height() }

// BlackRow thresholds row y against a black point of that row alone, after
// a small sharpening filter.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	width := g.source.Width()
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}
	lum := g.source.Row(y, nil)
	if lum == nil {
		return nil, fmt.Errorf("%w: row %d out of range", qrcodec.ErrInvalidArgument, y)
	}

	var buckets [luminanceBuckets]int
	for _, l := range lum[:width] {
		buckets[l>>luminanceShift]++
	}
	blackPoint, err := estimateBlackPoint(&buckets)
	if err != nil {
		return nil, err
	}

	if width < 3 {
		for x := 0; x < width; x++ {
			if int(lum[x]) < blackPoint {
				row.Set(x)
			}
		}
		return row, nil
	}
	left, center := int(lum[0]), int(lum[1])
	for x := 1; x < width-1; x++ {
		right := int(lum[x+1])
		if (4*center-left-right)/2 < blackPoint {
			row.Set(x)
		}
		left, center = center, right
	}
	return row, nil
}

// BlackMatrix samples four rows across the middle three fifths of the image
// to build the histogram, then thresholds every pixel.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	width, height := g.source.Width(), g.source.Height()

	var buckets [luminanceBuckets]int
	row := make([]byte, width)
	for i := 1; i < 5; i++ {
		row = g.source.Row(height*i/5, row)
		for x := width / 5; x < width*4/5; x++ {
			buckets[row[x]>>luminanceShift]++
		}
	}
	blackPoint, err := estimateBlackPoint(&buckets)
	if err != nil {
		return nil, err
	}

	m := bitutil.NewBitMatrixWithSize(width, height)
	lum := g.source.Matrix()
	for y := 0; y < height; y++ {
		for x, l := range lum[y*width : (y+1)*width] {
			if int(l) < blackPoint {
				m.Set(x, y)
			}
		}
	}
	return m, nil
}

// estimateBlackPoint finds the two most prominent histogram peaks and
// returns the luminance of the deepest valley between them, favouring
// valleys nearer the light peak.
func estimateBlackPoint(buckets *[luminanceBuckets]int) (int, error) {
	maxCount, firstPeak := 0, 0
	for x, c := range buckets {
		if c > maxCount {
			firstPeak, maxCount = x, c
		}
	}

	secondPeak, secondScore := 0, 0
	for x, c := range buckets {
		d := x - firstPeak
		if score := c * d * d; score > secondScore {
			secondPeak, secondScore = x, score
		}
	}
	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}
	if secondPeak-firstPeak <= luminanceBuckets/16 {
		return 0, fmt.Errorf("%w: luminance histogram has a single peak", qrcodec.ErrNotFound)
	}

	valley, valleyScore := secondPeak-1, -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		d := x - firstPeak
		if score := d * d * (secondPeak - x) * (maxCount - buckets[x]); score > valleyScore {
			valley, valleyScore = x, score
		}
	}
	return valley << luminanceShift, nil
}
