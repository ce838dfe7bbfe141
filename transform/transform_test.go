package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestQuadToQuadCorners(t *testing.T) {
	tests := []struct {
		name     string
		from, to Quad
	}{
		{"scale", Quad{0, 0, 1, 0, 1, 1, 0, 1}, Quad{10, 10, 30, 10, 30, 30, 10, 30}},
		{"rotate", Quad{3.5, 3.5, 17.5, 3.5, 17.5, 17.5, 3.5, 17.5}, Quad{100, 20, 180, 100, 100, 180, 20, 100}},
		{"perspective", Quad{3.5, 3.5, 17.5, 3.5, 14.5, 14.5, 3.5, 17.5}, Quad{40, 50, 210, 40, 190, 200, 55, 230}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := QuadToQuad(tt.from, tt.to)
			for i := 0; i < 8; i += 2 {
				x, y := p.Apply(tt.from[i], tt.from[i+1])
				if !near(x, tt.to[i]) || !near(y, tt.to[i+1]) {
					t.Errorf("corner %d -> (%f,%f), want (%f,%f)", i/2, x, y, tt.to[i], tt.to[i+1])
				}
			}
		})
	}
}

func TestTransformPoints(t *testing.T) {
	p := QuadToQuad(Quad{0, 0, 1, 0, 1, 1, 0, 1}, Quad{0, 0, 2, 0, 2, 2, 0, 2})
	pts := []float64{0.5, 0.5, 0.25, 0.75}
	p.TransformPoints(pts)
	want := []float64{1, 1, 0.5, 1.5}
	for i := range pts {
		if !near(pts[i], want[i]) {
			t.Fatalf("got %v, want %v", pts, want)
		}
	}
}

func TestSampleGrid(t *testing.T) {
	// A 5x5 grid drawn at 4 pixels per module with a 2 pixel border.
	grid := bitutil.ParseStringMatrix("X   X   X \n"+
		"    X     \n"+
		"X       X \n"+
		"    X     \n"+
		"X   X   X \n", "X ", "  ")
	if grid.Width() != 5 || grid.Height() != 5 {
		t.Fatalf("fixture is %dx%d", grid.Width(), grid.Height())
	}
	img := bitutil.NewBitMatrix(24)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if grid.Get(x, y) {
				img.SetRegion(2+4*x, 2+4*y, 4, 4)
			}
		}
	}
	p := QuadToQuad(Quad{0, 0, 5, 0, 5, 5, 0, 5}, Quad{2, 2, 22, 2, 22, 22, 2, 22})
	got, err := SampleGrid(img, 5, p)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(grid) {
		t.Errorf("sampled\n%s\nwant\n%s", got, grid)
	}
}

func TestSampleGridOutside(t *testing.T) {
	img := bitutil.NewBitMatrix(10)
	p := QuadToQuad(Quad{0, 0, 5, 0, 5, 5, 0, 5}, Quad{0, 0, 50, 0, 50, 50, 0, 50})
	if _, err := SampleGrid(img, 5, p); !errors.Is(err, qrcodec.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := SampleGrid(img, 0, p); !errors.Is(err, qrcodec.ErrNotFound) {
		t.Errorf("dimension 0: got %v", err)
	}
}

func TestNudgePoints(t *testing.T) {
	img := bitutil.NewBitMatrix(10)
	pts := []float64{-0.5, 3, 10.2, 4}
	if err := nudgePoints(img, pts); err != nil {
		t.Fatal(err)
	}
	// int(-0.5) is 0, so the first point is already inside.
	if pts[0] != -0.5 || pts[2] != 9 {
		t.Errorf("got %v", pts)
	}
	if err := nudgePoints(img, []float64{-3, 0}); !errors.Is(err, qrcodec.ErrNotFound) {
		t.Errorf("far outside: got %v", err)
	}
}
