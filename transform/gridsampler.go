package transform

import (
	"fmt"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

// SampleGrid reads a dimension x dimension module grid from image, taking
// each module from the pixel that t maps its centre to. Centres that fall
// off the image by at most one pixel along a row's ends are pulled back in;
// anything further fails with qrcodec.ErrNotFound.
func SampleGrid(image *bitutil.BitMatrix, dimension int, t *Perspective) (*bitutil.BitMatrix, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: grid dimension %d", qrcodec.ErrNotFound, dimension)
	}
	bits := bitutil.NewBitMatrix(dimension)
	points := make([]float64, 2*dimension)
	for y := 0; y < dimension; y++ {
		for x := 0; x < dimension; x++ {
			points[2*x] = float64(x) + 0.5
			points[2*x+1] = float64(y) + 0.5
		}
		t.TransformPoints(points)
		if err := nudgePoints(image, points); err != nil {
			return nil, err
		}
		for x := 0; x < dimension; x++ {
			px, py := int(points[2*x]), int(points[2*x+1])
			if px < 0 || py < 0 || px >= image.Width() || py >= image.Height() {
				return nil, fmt.Errorf("%w: module (%d,%d) maps outside the image", qrcodec.ErrNotFound, x, y)
			}
			if image.Get(px, py) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

// nudgePoints walks in from both ends of a row of points while they sit
// exactly one pixel outside the image, moving them onto the border.
func nudgePoints(image *bitutil.BitMatrix, points []float64) error {
	w, h := image.Width(), image.Height()
	nudge := func(i int) (bool, error) {
		x, y := int(points[i]), int(points[i+1])
		if x < -1 || x > w || y < -1 || y > h {
			return false, fmt.Errorf("%w: sample point (%d,%d) outside %dx%d image", qrcodec.ErrNotFound, x, y, w, h)
		}
		moved := false
		switch x {
		case -1:
			points[i], moved = 0, true
		case w:
			points[i], moved = float64(w-1), true
		}
		switch y {
		case -1:
			points[i+1], moved = 0, true
		case h:
			points[i+1], moved = float64(h-1), true
		}
		return moved, nil
	}

	for i := 0; i < len(points); i += 2 {
		moved, err := nudge(i)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	for i := len(points) - 2; i >= 0; i -= 2 {
		moved, err := nudge(i)
		if err != nil {
			return err
		}
		if !moved {
			break
		}
	}
	return nil
}
