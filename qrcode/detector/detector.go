// Package detector locates a QR code in a binary image and samples its
// module grid.
package detector

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/internal"
	"github.com/skykywind/qrcodec/qrcode/decoder"
	"github.com/skykywind/qrcodec/transform"
)

// Detector finds one symbol in a binary image.
type Detector struct {
	image *bitutil.BitMatrix
	log   logrus.FieldLogger
}

// NewDetector creates a Detector for image.
func NewDetector(image *bitutil.BitMatrix) *Detector {
	return &Detector{image: image, log: internal.Logger(nil)}
}

// Detect locates the finder patterns and samples the grid they frame.
// Errors wrap qrcodec.ErrNotFound.
func (d *Detector) Detect(opts *qrcodec.DecodeOptions) (*internal.DetectorResult, error) {
	if opts == nil {
		opts = &qrcodec.DecodeOptions{}
	}
	d.log = internal.Logger(opts.Logger)

	info, err := NewFinderPatternFinder(d.image, opts.Finder).Find(opts.TryHarder)
	if err != nil {
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"stage":      "finders",
		"topLeft":    info.TopLeft.ResultPoint,
		"topRight":   info.TopRight.ResultPoint,
		"bottomLeft": info.BottomLeft.ResultPoint,
		"moduleSize": info.TopLeft.EstimatedModuleSize,
	}).Debug("finder patterns located")
	return d.ProcessFinderPatternInfo(info)
}

// ProcessFinderPatternInfo estimates the symbol size from the finder
// centres, looks for the bottom-right alignment pattern and samples the grid.
func (d *Detector) ProcessFinderPatternInfo(info *FinderPatternInfo) (*internal.DetectorResult, error) {
	tl, tr, bl := info.TopLeft, info.TopRight, info.BottomLeft

	moduleSize := d.calculateModuleSize(tl, tr, bl)
	if math.IsNaN(moduleSize) || moduleSize < 1 {
		return nil, fmt.Errorf("%w: module size %.2f", qrcodec.ErrNotFound, moduleSize)
	}
	dimension, err := computeDimension(tl.ResultPoint, tr.ResultPoint, bl.ResultPoint, moduleSize)
	if err != nil {
		return nil, err
	}
	provisional, err := decoder.GetProvisionalVersionForDimension(dimension)
	if err != nil {
		return nil, err
	}

	var alignment *AlignmentPattern
	if len(provisional.AlignmentPatternCenters) > 0 {
		brX := tr.X - tl.X + bl.X
		brY := tr.Y - tl.Y + bl.Y
		// The bottom-right alignment centre sits 3 modules in from the
		// corner that mirrors the top-left finder centre.
		correction := 1 - 3/float64(provisional.DimensionForVersion()-7)
		estX := int(tl.X + correction*(brX-tl.X))
		estY := int(tl.Y + correction*(brY-tl.Y))
		for allowance := 4; allowance <= 16; allowance <<= 1 {
			if ap, err := d.findAlignmentInRegion(moduleSize, estX, estY, float64(allowance)); err == nil {
				alignment = ap
				break
			}
		}
	}

	bits, err := transform.SampleGrid(d.image, dimension, createTransform(tl, tr, bl, alignment, dimension))
	if err != nil {
		return nil, err
	}

	points := []qrcodec.ResultPoint{bl.ResultPoint, tl.ResultPoint, tr.ResultPoint}
	if alignment != nil {
		points = append(points, alignment.ResultPoint)
	}
	d.log.WithFields(logrus.Fields{
		"stage":      "sample",
		"dimension":  dimension,
		"moduleSize": moduleSize,
		"alignment":  alignment != nil,
	}).Debug("grid sampled")
	return internal.NewDetectorResult(bits, points), nil
}

// computeDimension rounds the finder spacing to a symbol side. Sides are
// 4v+17, so 0 and 2 mod 4 are nudged to the nearest valid value and 3 mod 4
// is ambiguous.
func computeDimension(tl, tr, bl qrcodec.ResultPoint, moduleSize float64) (int, error) {
	across := int(math.Round(qrcodec.Distance(tl, tr) / moduleSize))
	down := int(math.Round(qrcodec.Distance(tl, bl) / moduleSize))
	dimension := (across+down)/2 + 7
	switch dimension & 3 {
	case 0:
		dimension++
	case 2:
		dimension--
	case 3:
		return 0, fmt.Errorf("%w: finder spacing gives dimension %d", qrcodec.ErrNotFound, dimension)
	}
	return dimension, nil
}

func (d *Detector) calculateModuleSize(tl, tr, bl *FinderPattern) float64 {
	return (d.moduleSizeOneWay(tl.ResultPoint, tr.ResultPoint) + d.moduleSizeOneWay(tl.ResultPoint, bl.ResultPoint)) / 2
}

// moduleSizeOneWay measures the 7-module span of the finder patterns at
// both ends of the line from a to b.
func (d *Detector) moduleSizeOneWay(a, b qrcodec.ResultPoint) float64 {
	ax, ay, bx, by := int(a.X), int(a.Y), int(b.X), int(b.Y)
	fromA := d.runBothWays(ax, ay, bx, by)
	fromB := d.runBothWays(bx, by, ax, ay)
	switch {
	case math.IsNaN(fromA):
		return fromB / 7
	case math.IsNaN(fromB):
		return fromA / 7
	}
	return (fromA + fromB) / 14
}

// runBothWays measures the dark/light/dark run from (fromX, fromY) towards
// (toX, toY) and away from it, clipping the second line to the image.
func (d *Detector) runBothWays(fromX, fromY, toX, toY int) float64 {
	result := d.blackWhiteBlackRun(fromX, fromY, toX, toY)

	w, h := d.image.Width(), d.image.Height()
	scale := 1.0
	otherX := fromX - (toX - fromX)
	if otherX < 0 {
		scale = float64(fromX) / float64(fromX-otherX)
		otherX = 0
	} else if otherX >= w {
		scale = float64(w-1-fromX) / float64(otherX-fromX)
		otherX = w - 1
	}
	otherY := int(float64(fromY) - float64(toY-fromY)*scale)

	scale = 1.0
	if otherY < 0 {
		scale = float64(fromY) / float64(fromY-otherY)
		otherY = 0
	} else if otherY >= h {
		scale = float64(h-1-fromY) / float64(otherY-fromY)
		otherY = h - 1
	}
	otherX = int(float64(fromX) + float64(otherX-fromX)*scale)

	// The start pixel is counted by both halves.
	return result + d.blackWhiteBlackRun(fromX, fromY, otherX, otherY) - 1
}

// blackWhiteBlackRun walks a Bresenham line from (fromX, fromY) and returns
// the distance to the first light pixel after a dark, light, dark sequence.
// A line that ends inside the final dark run counts as ending just past its
// end point. It returns NaN if the sequence is not completed.
func (d *Detector) blackWhiteBlackRun(fromX, fromY, toX, toY int) float64 {
	steep := abs(toY-fromY) > abs(toX-fromX)
	if steep {
		fromX, fromY = fromY, fromX
		toX, toY = toY, toX
	}
	dx, dy := abs(toX-fromX), abs(toY-fromY)
	xstep, ystep := 1, 1
	if fromX > toX {
		xstep = -1
	}
	if fromY > toY {
		ystep = -1
	}

	dist := func(x, y int) float64 {
		return math.Hypot(float64(x-fromX), float64(y-fromY))
	}

	state := 0
	e := -dx / 2
	for x, y := fromX, fromY; x != toX+xstep; x += xstep {
		px, py := x, y
		if steep {
			px, py = y, x
		}
		if px < 0 || py < 0 || px >= d.image.Width() || py >= d.image.Height() {
			break
		}
		// Dark is expected in states 0 and 2, light in state 1.
		if (state == 1) == d.image.Get(px, py) {
			if state == 2 {
				return dist(x, y)
			}
			state++
		}
		e += dy
		if e > 0 {
			if y == toY {
				break
			}
			y += ystep
			e -= dx
		}
	}
	if state == 2 {
		return dist(toX+xstep, toY)
	}
	return math.NaN()
}

func (d *Detector) findAlignmentInRegion(moduleSize float64, estX, estY int, allowanceFactor float64) (*AlignmentPattern, error) {
	allowance := int(allowanceFactor * moduleSize)
	left := max(0, estX-allowance)
	right := min(d.image.Width()-1, estX+allowance)
	top := max(0, estY-allowance)
	bottom := min(d.image.Height()-1, estY+allowance)
	if float64(right-left) < 3*moduleSize || float64(bottom-top) < 3*moduleSize {
		return nil, fmt.Errorf("%w: alignment window too small", qrcodec.ErrNotFound)
	}
	f := &alignmentFinder{
		image:      d.image,
		left:       left,
		top:        top,
		width:      right - left,
		height:     bottom - top,
		moduleSize: moduleSize,
	}
	return f.find()
}

// createTransform maps module coordinates to image pixels. Finder centres
// sit 3.5 modules in from their corners; the alignment centre, when found,
// 6.5 modules in from the bottom-right corner.
func createTransform(tl, tr, bl *FinderPattern, alignment *AlignmentPattern, dimension int) *transform.Perspective {
	far := float64(dimension) - 3.5
	var brX, brY, srcBR float64
	if alignment != nil {
		brX, brY = alignment.X, alignment.Y
		srcBR = far - 3
	} else {
		brX = tr.X - tl.X + bl.X
		brY = tr.Y - tl.Y + bl.Y
		srcBR = far
	}
	return transform.QuadToQuad(
		transform.Quad{3.5, 3.5, far, 3.5, srcBR, srcBR, 3.5, far},
		transform.Quad{tl.X, tl.Y, tr.X, tr.Y, brX, brY, bl.X, bl.Y},
	)
}
