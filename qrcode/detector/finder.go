package detector

import (
	"fmt"
	"math"
	"sort"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
)

const (
	centerQuorum = 2
	minSkip      = 3
	// maxModules is the largest symbol side the row sampling is tuned for.
	maxModules = 97
	// nearIdeal is the largest distortion of a confirmed triple that ends
	// the row scan early.
	nearIdeal = 0.05
)

// FinderPattern is a candidate finder pattern centre.
type FinderPattern struct {
	qrcodec.ResultPoint
	EstimatedModuleSize float64
	// Count is the number of row scans that confirmed this centre.
	Count int
}

// aboutEquals reports whether a new sighting at (x, y) with the given
// module size is the same pattern.
func (fp *FinderPattern) aboutEquals(moduleSize, x, y float64) bool {
	if math.Abs(y-fp.Y) > moduleSize || math.Abs(x-fp.X) > moduleSize {
		return false
	}
	diff := math.Abs(moduleSize - fp.EstimatedModuleSize)
	return diff <= 1 || diff <= fp.EstimatedModuleSize
}

// combineEstimate returns fp averaged with a new sighting, weighted by count.
func (fp *FinderPattern) combineEstimate(x, y, moduleSize float64) *FinderPattern {
	n := float64(fp.Count)
	return &FinderPattern{
		ResultPoint: qrcodec.ResultPoint{
			X: (n*fp.X + x) / (n + 1),
			Y: (n*fp.Y + y) / (n + 1),
		},
		EstimatedModuleSize: (n*fp.EstimatedModuleSize + moduleSize) / (n + 1),
		Count:               fp.Count + 1,
	}
}

// FinderPatternInfo holds the three finder patterns of a symbol.
type FinderPatternInfo struct {
	BottomLeft, TopLeft, TopRight *FinderPattern
}

// FinderPatternFinder searches a binary image for the three finder patterns
// of one symbol.
type FinderPatternFinder struct {
	image      *bitutil.BitMatrix
	tol        qrcodec.FinderTolerance
	centers    []*FinderPattern
	hasSkipped bool
}

// NewFinderPatternFinder creates a finder over image. Zero tolerance fields
// take their defaults.
func NewFinderPatternFinder(image *bitutil.BitMatrix, tol qrcodec.FinderTolerance) *FinderPatternFinder {
	return &FinderPatternFinder{image: image, tol: tol.Normalized()}
}

// Centers returns every candidate seen by the last Find.
func (f *FinderPatternFinder) Centers() []*FinderPattern { return f.centers }

// Find scans rows for 1:1:3:1:1 dark/light runs, confirms each hit across
// the column, the row and the diagonal through its centre, and returns the
// triple that best forms an isosceles right angle. With tryHarder every row
// is scanned.
func (f *FinderPatternFinder) Find(tryHarder bool) (*FinderPatternInfo, error) {
	maxY, maxX := f.image.Height(), f.image.Width()
	f.centers = f.centers[:0]
	f.hasSkipped = false

	skip := (3 * maxY) / (4 * maxModules)
	if skip < minSkip {
		skip = minSkip
	}
	if tryHarder {
		skip = 1
	}

	var runs [5]int
	done := false
	for y := skip - 1; y < maxY && !done; y += skip {
		runs = [5]int{}
		state := 0
		for x := 0; x < maxX; x++ {
			if f.image.Get(x, y) {
				if state&1 == 1 {
					state++
				}
				runs[state]++
				continue
			}
			if state&1 == 1 {
				runs[state]++
				continue
			}
			if state != 4 {
				state++
				runs[state]++
				continue
			}
			if !f.foundPatternCross(runs, f.tol.ModuleVariance) {
				shiftRuns(&runs)
				state = 3
				continue
			}
			if !f.handlePossibleCenter(runs, x, y) {
				shiftRuns(&runs)
				state = 3
				continue
			}
			skip = 2
			if f.hasSkipped {
				done = f.haveMultiplyConfirmedCenters()
			} else if rowSkip := f.findRowSkip(); rowSkip > runs[2] {
				// Jump down to where the third pattern should start.
				y += rowSkip - runs[2] - skip
				x = maxX - 1
			}
			runs = [5]int{}
			state = 0
		}
		if f.foundPatternCross(runs, f.tol.ModuleVariance) && f.handlePossibleCenter(runs, maxX, y) {
			skip = runs[0]
			if f.hasSkipped {
				done = f.haveMultiplyConfirmedCenters()
			}
		}
	}

	best, err := f.selectBestPatterns()
	if err != nil {
		return nil, err
	}
	bl, tl, tr := qrcodec.OrderBestPatterns([3]qrcodec.ResultPoint{best[0].ResultPoint, best[1].ResultPoint, best[2].ResultPoint})
	pick := func(p qrcodec.ResultPoint) *FinderPattern {
		for _, fp := range best {
			if fp.ResultPoint == p {
				return fp
			}
		}
		return nil
	}
	return &FinderPatternInfo{BottomLeft: pick(bl), TopLeft: pick(tl), TopRight: pick(tr)}, nil
}

func shiftRuns(runs *[5]int) {
	runs[0], runs[1], runs[2], runs[3], runs[4] = runs[2], runs[3], runs[4], 1, 0
}

// centerFromEnd returns the centre of the middle run given the coordinate
// just past the last run.
func centerFromEnd(runs [5]int, end int) float64 {
	return float64(end-runs[4]-runs[3]) - float64(runs[2])/2
}

// foundPatternCross reports whether runs are close enough to 1:1:3:1:1,
// each allowed to stray by variance module sizes.
func (f *FinderPatternFinder) foundPatternCross(runs [5]int, variance float64) bool {
	total := 0
	for _, n := range runs {
		if n == 0 {
			return false
		}
		total += n
	}
	if total < 7 {
		return false
	}
	moduleSize := float64(total) / 7
	maxVariance := moduleSize * variance
	for i, n := range runs {
		want, allowed := moduleSize, maxVariance
		if i == 2 {
			want, allowed = 3*moduleSize, 3*maxVariance
		}
		if math.Abs(want-float64(n)) >= allowed {
			return false
		}
	}
	return true
}

// crossRuns counts the five dark/light/dark/light/dark runs through (x, y)
// along (dx, dy). The middle run is unbounded; the others stop once they
// pass maxCount pixels.
func (f *FinderPatternFinder) crossRuns(x, y, dx, dy, maxCount int) (runs [5]int, end int) {
	w, h := f.image.Width(), f.image.Height()
	at := func(k int) (inside, dark bool) {
		px, py := x+k*dx, y+k*dy
		if px < 0 || py < 0 || px >= w || py >= h {
			return false, false
		}
		return true, f.image.Get(px, py)
	}
	walk := func(k, step, state int) int {
		for {
			inside, dark := at(k)
			if !inside || dark != (state != 1 && state != 3) {
				return k
			}
			if state != 2 && runs[state] > maxCount {
				return k
			}
			runs[state]++
			k += step
		}
	}

	k := 0
	for state := 2; state >= 0; state-- {
		k = walk(k, -1, state)
	}
	k = 1
	for state := 2; state <= 4; state++ {
		k = walk(k, 1, state)
	}
	return runs, k
}

// crossCheck re-measures a candidate along one axis and returns the
// refined centre coordinate on that axis, or NaN.
func (f *FinderPatternFinder) crossCheck(x, y, dx, dy, maxCount, originalTotal int) float64 {
	runs, end := f.crossRuns(x, y, dx, dy, maxCount)
	total := 0
	for i, n := range runs {
		if n == 0 || (i != 2 && n > maxCount) {
			return math.NaN()
		}
		total += n
	}
	if 5*abs(total-originalTotal) >= 2*originalTotal {
		return math.NaN()
	}
	if !f.foundPatternCross(runs, f.tol.ModuleVariance) {
		return math.NaN()
	}
	start := x
	if dy != 0 {
		start = y
	}
	return centerFromEnd(runs, start+end)
}

// crossCheckDiagonal confirms a centre along the down-right diagonal, which
// rules out the row/column crossings of ordinary dark blobs.
func (f *FinderPatternFinder) crossCheckDiagonal(x, y int) bool {
	runs, _ := f.crossRuns(x, y, 1, 1, f.image.Width()+f.image.Height())
	return f.foundPatternCross(runs, f.tol.DiagonalVariance)
}

// handlePossibleCenter confirms a row hit ending just before x and records
// it. It returns true if the centre survived all cross-checks.
func (f *FinderPatternFinder) handlePossibleCenter(runs [5]int, x, y int) bool {
	total := runs[0] + runs[1] + runs[2] + runs[3] + runs[4]
	centerX := centerFromEnd(runs, x)
	centerY := f.crossCheck(int(centerX), y, 0, 1, runs[2], total)
	if math.IsNaN(centerY) {
		return false
	}
	centerX = f.crossCheck(int(centerX), int(centerY), 1, 0, runs[2], total)
	if math.IsNaN(centerX) || !f.crossCheckDiagonal(int(centerX), int(centerY)) {
		return false
	}

	moduleSize := float64(total) / 7
	for i, c := range f.centers {
		if c.aboutEquals(moduleSize, centerX, centerY) {
			f.centers[i] = c.combineEstimate(centerX, centerY, moduleSize)
			return true
		}
	}
	f.centers = append(f.centers, &FinderPattern{
		ResultPoint:         qrcodec.ResultPoint{X: centerX, Y: centerY},
		EstimatedModuleSize: moduleSize,
		Count:               1,
	})
	return true
}

// findRowSkip estimates how many rows can be skipped once two patterns are
// confirmed: the third one lies no higher than their vertical offset.
func (f *FinderPatternFinder) findRowSkip() int {
	if len(f.centers) <= 1 {
		return 0
	}
	var first *FinderPattern
	for _, c := range f.centers {
		if c.Count < centerQuorum {
			continue
		}
		if first == nil {
			first = c
			continue
		}
		f.hasSkipped = true
		return int((math.Abs(first.X-c.X) - math.Abs(first.Y-c.Y)) / 2)
	}
	return 0
}

// haveMultiplyConfirmedCenters reports whether three centres have reached
// quorum, their module sizes agree within 5% and the best of them form a
// near-ideal corner. A false hit in the data region can reach quorum too,
// so agreement in size alone does not end the scan.
func (f *FinderPatternFinder) haveMultiplyConfirmedCenters() bool {
	confirmed := f.confirmedCenters()
	if len(confirmed) < 3 {
		return false
	}
	total := 0.0
	for _, c := range confirmed {
		total += c.EstimatedModuleSize
	}
	average := total / float64(len(confirmed))
	deviation := 0.0
	for _, c := range confirmed {
		deviation += math.Abs(c.EstimatedModuleSize - average)
	}
	if deviation > 0.05*total {
		return false
	}
	_, d, ok := f.bestTriple(confirmed)
	return ok && d <= nearIdeal
}

func (f *FinderPatternFinder) confirmedCenters() []*FinderPattern {
	var out []*FinderPattern
	for _, c := range f.centers {
		if c.Count >= centerQuorum {
			out = append(out, c)
		}
	}
	return out
}

// selectBestPatterns returns the candidate triple closest to an isosceles
// right triangle among those within the module size, angle and leg
// tolerances. The best triple of centres confirmed on several rows wins
// unless one including unconfirmed centres is clearly closer to ideal.
func (f *FinderPatternFinder) selectBestPatterns() ([3]*FinderPattern, error) {
	if len(f.centers) < 3 {
		return [3]*FinderPattern{}, fmt.Errorf("%w: %d finder candidates", qrcodec.ErrNotFound, len(f.centers))
	}
	confirmed, dc, okc := f.bestTriple(f.confirmedCenters())
	all, da, oka := f.bestTriple(f.centers)
	switch {
	case okc && (!oka || dc <= da+nearIdeal):
		return confirmed, nil
	case oka:
		return all, nil
	}
	return [3]*FinderPattern{}, fmt.Errorf("%w: no finder triple within tolerance among %d candidates", qrcodec.ErrNotFound, len(f.centers))
}

// bestTriple returns the least distorted triple of centers whose module
// sizes agree within ModuleSizeRatio.
func (f *FinderPatternFinder) bestTriple(centers []*FinderPattern) (best [3]*FinderPattern, distortion float64, ok bool) {
	if len(centers) < 3 {
		return best, 0, false
	}
	candidates := append([]*FinderPattern(nil), centers...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EstimatedModuleSize < candidates[j].EstimatedModuleSize
	})

	distortion = math.MaxFloat64
	for i := 0; i < len(candidates)-2; i++ {
		pi := candidates[i]
		limit := pi.EstimatedModuleSize * f.tol.ModuleSizeRatio
		for j := i + 1; j < len(candidates)-1; j++ {
			pj := candidates[j]
			if pj.EstimatedModuleSize > limit {
				break
			}
			for k := j + 1; k < len(candidates); k++ {
				pk := candidates[k]
				if pk.EstimatedModuleSize > limit {
					break
				}
				if d, valid := f.triangleDistortion(pi, pj, pk); valid && d < distortion {
					distortion = d
					best = [3]*FinderPattern{pi, pj, pk}
					ok = true
				}
			}
		}
	}
	return best, distortion, ok
}

// triangleDistortion scores how far a triple is from an isosceles right
// triangle, using squared side lengths a <= b <= c relative to c. A
// perfect triple scores zero whatever its size.
func (f *FinderPatternFinder) triangleDistortion(p, q, r *FinderPattern) (float64, bool) {
	s := []float64{squaredDistance(p, q), squaredDistance(q, r), squaredDistance(p, r)}
	sort.Float64s(s)
	a, b, c := s[0], s[1], s[2]
	if a <= 0 {
		return 0, false
	}
	if math.Sqrt(b/a) > f.tol.LegRatio {
		return 0, false
	}
	if cos := (a + b - c) / (2 * math.Sqrt(a*b)); math.Abs(cos) > f.tol.RightAngleCosine {
		return 0, false
	}
	return (math.Abs(c-2*b) + math.Abs(c-2*a)) / c, true
}

func squaredDistance(a, b *FinderPattern) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
