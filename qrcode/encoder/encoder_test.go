package encoder

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/bitutil"
	"github.com/skykywind/qrcodec/qrcode/decoder"
	"github.com/skykywind/qrcodec/reedsolomon"
)

var allLevels = []decoder.ErrorCorrectionLevel{decoder.ECLevelL, decoder.ECLevelM, decoder.ECLevelQ, decoder.ECLevelH}

func mustVersion(t *testing.T, n int) *decoder.Version {
	t.Helper()
	v, err := decoder.GetVersionForNumber(n)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestEncodeSegments(t *testing.T) {
	v := mustVersion(t, 1)
	data, err := EncodeSegments([]byte("Hello QRCode"), v, decoder.ECLevelM, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 16 {
		t.Fatalf("got %d codewords, want 16", len(data))
	}
	// 0100 00001100 01001000 ...
	if data[0] != 0x40 || data[1] != 0xC4 || data[2] != 0x86 {
		t.Errorf("header = % x", data[:3])
	}
	// 4+8+96 bits, terminator, then 0xEC 0x11.
	if data[13] != 0x50 || data[14] != padCodeword1 || data[15] != padCodeword2 {
		t.Errorf("tail = % x", data[13:])
	}

	res, err := decoder.DecodeBitStream(data, v, decoder.ECLevelM, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "Hello QRCode" {
		t.Errorf("decoded %q", res.Text)
	}
}

func TestEncodeSegmentsSixteenBitCount(t *testing.T) {
	v := mustVersion(t, 10)
	msg := bytes.Repeat([]byte("x"), 200)
	data, err := EncodeSegments(msg, v, decoder.ECLevelL, false)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0x40 || data[1] != 0x0C || data[2]>>4 != 0x8 {
		t.Errorf("header = % x", data[:3])
	}
	res, err := decoder.DecodeBitStream(data, v, decoder.ECLevelL, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != string(msg) {
		t.Errorf("decoded %d bytes", len(res.Text))
	}
}

func TestEncodeSegmentsECI(t *testing.T) {
	v := mustVersion(t, 2)
	data, err := EncodeSegments([]byte("héllo"), v, decoder.ECLevelM, true)
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != 0x71 || data[1]>>4 != 0xA {
		t.Errorf("ECI header = % x", data[:2])
	}
	res, err := decoder.DecodeBitStream(data, v, decoder.ECLevelM, "ISO-8859-1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "héllo" || res.SymbologyModifier != 2 {
		t.Errorf("decoded %q modifier %d", res.Text, res.SymbologyModifier)
	}
}

func TestEncodeSegmentsCapacityExceeded(t *testing.T) {
	v := mustVersion(t, 1)
	if _, err := EncodeSegments(make([]byte, 17), v, decoder.ECLevelL, false); err != nil {
		t.Fatalf("17 bytes in 1-L: %v", err)
	}
	_, err := EncodeSegments(make([]byte, 18), v, decoder.ECLevelL, false)
	if !errors.Is(err, qrcodec.ErrCapacityExceeded) {
		t.Fatalf("got %v, want ErrCapacityExceeded", err)
	}
}

func TestInterleaveWithEC(t *testing.T) {
	field := reedsolomon.QRCodeField256()
	for _, n := range []int{1, 5, 13, 40} {
		v := mustVersion(t, n)
		for _, level := range allLevels {
			data := make([]byte, v.DataCodewords(level))
			for i := range data {
				data[i] = byte(i*7 + n)
			}
			out, err := InterleaveWithEC(data, v, level)
			if err != nil {
				t.Fatal(err)
			}
			blocks, err := decoder.GetDataBlocks(out, v, level)
			if err != nil {
				t.Fatal(err)
			}
			var joined []byte
			for _, b := range blocks {
				joined = append(joined, b.Codewords[:b.NumDataCodewords]...)
				// Every block is a codeword: its syndromes vanish.
				if c, err := reedsolomon.NewDecoder(field).Decode(append([]byte{}, b.Codewords...), len(b.Codewords)-b.NumDataCodewords); err != nil || c != 0 {
					t.Errorf("%d-%v: block not a codeword (%d, %v)", n, level, c, err)
				}
			}
			if !bytes.Equal(joined, data) {
				t.Errorf("%d-%v: data codewords not recovered", n, level)
			}
		}
	}

	if _, err := InterleaveWithEC(make([]byte, 3), mustVersion(t, 1), decoder.ECLevelL); !errors.Is(err, qrcodec.ErrInvalidArgument) {
		t.Errorf("short data: got %v", err)
	}
}

func checkFinder(t *testing.T, m *bitutil.BitMatrix, left, top int) {
	t.Helper()
	for y := -1; y <= 7; y++ {
		for x := -1; x <= 7; x++ {
			px, py := left+x, top+y
			if px < 0 || py < 0 || px >= m.Width() || py >= m.Height() {
				continue
			}
			var want bool
			switch {
			case x == -1 || y == -1 || x == 7 || y == 7:
				want = false // separator
			case x == 0 || y == 0 || x == 6 || y == 6:
				want = true
			case x == 1 || y == 1 || x == 5 || y == 5:
				want = false
			default:
				want = true
			}
			if m.Get(px, py) != want {
				t.Fatalf("finder at (%d,%d): module (%d,%d) = %v", left, top, px, py, !want)
			}
		}
	}
}

func TestBuildMatrixStructure(t *testing.T) {
	for _, n := range []int{1, 2, 7, 21} {
		v := mustVersion(t, n)
		dim := v.DimensionForVersion()
		data := make([]byte, v.DataCodewords(decoder.ECLevelQ))
		codewords, err := InterleaveWithEC(data, v, decoder.ECLevelQ)
		if err != nil {
			t.Fatal(err)
		}
		m, mask, err := BuildMatrix(codewords, v, decoder.ECLevelQ, -1)
		if err != nil {
			t.Fatal(err)
		}
		if m.Width() != dim || m.Height() != dim {
			t.Fatalf("version %d: %dx%d grid", n, m.Width(), m.Height())
		}
		checkFinder(t, m, 0, 0)
		checkFinder(t, m, dim-7, 0)
		checkFinder(t, m, 0, dim-7)
		for i := 8; i < dim-8; i++ {
			if m.Get(i, 6) != (i%2 == 0) || m.Get(6, i) != (i%2 == 0) {
				t.Fatalf("version %d: timing broken at %d", n, i)
			}
		}
		if !m.Get(8, dim-8) {
			t.Errorf("version %d: dark module missing", n)
		}

		parser, err := decoder.NewBitMatrixParser(m.Clone())
		if err != nil {
			t.Fatal(err)
		}
		fi, err := parser.ReadFormatInformation()
		if err != nil {
			t.Fatal(err)
		}
		if fi.ECLevel != decoder.ECLevelQ || int(fi.DataMask) != mask {
			t.Errorf("version %d: format %v/%d, want Q/%d", n, fi.ECLevel, fi.DataMask, mask)
		}
		pv, err := parser.ReadVersion()
		if err != nil || pv.Number != n {
			t.Fatalf("version %d: read version %v, %v", n, pv, err)
		}
		read, err := parser.ReadCodewords()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(read, codewords) {
			t.Errorf("version %d: codewords did not round-trip", n)
		}
	}
}

func TestBuildMatrixVersionInfoBothCopies(t *testing.T) {
	v := mustVersion(t, 7)
	codewords, _ := InterleaveWithEC(make([]byte, v.DataCodewords(decoder.ECLevelL)), v, decoder.ECLevelL)
	m, _, err := BuildMatrix(codewords, v, decoder.ECLevelL, 2)
	if err != nil {
		t.Fatal(err)
	}
	dim := v.DimensionForVersion()
	// Wipe the top-right copy; the bottom-left one must still be read.
	for y := 0; y < 6; y++ {
		for x := dim - 11; x < dim-8; x++ {
			m.Flip(x, y)
		}
	}
	parser, _ := decoder.NewBitMatrixParser(m)
	pv, err := parser.ReadVersion()
	if err != nil || pv.Number != 7 {
		t.Fatalf("read version %v, %v", pv, err)
	}
}

func TestBuildMatrixRejectsBadInput(t *testing.T) {
	v := mustVersion(t, 1)
	if _, _, err := BuildMatrix(make([]byte, 25), v, decoder.ECLevelL, -1); !errors.Is(err, qrcodec.ErrInvalidArgument) {
		t.Errorf("short codewords: %v", err)
	}
	if _, _, err := BuildMatrix(make([]byte, 26), v, decoder.ECLevelL, 8); !errors.Is(err, qrcodec.ErrInvalidArgument) {
		t.Errorf("mask 8: %v", err)
	}
}

func TestMaskPenaltyRules(t *testing.T) {
	light := bitutil.NewBitMatrix(21)
	if got := applyMaskPenaltyRule1(light); got != 42*(3+16) {
		t.Errorf("rule 1 on light grid = %d", got)
	}
	if got := applyMaskPenaltyRule2(light); got != 20*20*3 {
		t.Errorf("rule 2 on light grid = %d", got)
	}
	if got := applyMaskPenaltyRule3(light); got != 0 {
		t.Errorf("rule 3 on light grid = %d", got)
	}
	if got := applyMaskPenaltyRule4(light); got != 100 {
		t.Errorf("rule 4 on light grid = %d", got)
	}

	// One finder-like run on a light grid counts once.
	m := bitutil.NewBitMatrix(21)
	for i, dark := range finderLike {
		m.SetTo(4+i, 10, dark)
	}
	if got := applyMaskPenaltyRule3(m); got != penaltyN3 {
		t.Errorf("rule 3 with one pattern = %d", got)
	}

	checker := bitutil.NewBitMatrix(20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				checker.Set(x, y)
			}
		}
	}
	if got := CalculateMaskPenalty(checker); got != 0 {
		t.Errorf("checkerboard penalty = %d", got)
	}
}

func TestEncodeHelloQRCode(t *testing.T) {
	qr, err := Encode([]byte("Hello QRCode"), decoder.ECLevelM, nil)
	if err != nil {
		t.Fatal(err)
	}
	if qr.Version.Number != 1 || qr.Matrix.Width() != 21 {
		t.Errorf("version %d, %d modules", qr.Version.Number, qr.Matrix.Width())
	}
	if qr.ECLevel != decoder.ECLevelM {
		t.Errorf("level %v, want M", qr.ECLevel)
	}
	if !strings.Contains(qr.String(), "version: 1 level: M") {
		t.Errorf("String() = %q", qr.String()[:40])
	}
}

func TestEncodeBoostsLevel(t *testing.T) {
	qr, err := Encode([]byte("a"), decoder.ECLevelL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if qr.Version.Number != 1 || qr.ECLevel != decoder.ECLevelH {
		t.Errorf("got %d-%v, want 1-H", qr.Version.Number, qr.ECLevel)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	msg := []byte("determinism: same input, same grid")
	for _, level := range allLevels {
		a, err := Encode(msg, level, nil)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Encode(msg, level, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !a.Matrix.Equals(b.Matrix) || a.MaskPattern != b.MaskPattern {
			t.Errorf("level %v: grids differ", level)
		}
	}
}

func TestEncodeParams(t *testing.T) {
	mask := 5
	qr, err := Encode([]byte("params"), decoder.ECLevelM, &Params{MinVersion: 5, MaskPattern: &mask})
	if err != nil {
		t.Fatal(err)
	}
	if qr.Version.Number != 5 || qr.MaskPattern != 5 {
		t.Errorf("got version %d mask %d", qr.Version.Number, qr.MaskPattern)
	}

	if _, err := Encode([]byte("params"), decoder.ECLevelM, &Params{Version: 41}); !errors.Is(err, qrcodec.ErrInvalidArgument) {
		t.Errorf("version 41: %v", err)
	}
	bad := 9
	if _, err := Encode([]byte("params"), decoder.ECLevelM, &Params{MaskPattern: &bad}); !errors.Is(err, qrcodec.ErrInvalidArgument) {
		t.Errorf("mask 9: %v", err)
	}
}

func TestEncodeMessageTooLong(t *testing.T) {
	_, err := Encode(make([]byte, 3000), decoder.ECLevelL, nil)
	if !errors.Is(err, qrcodec.ErrMessageTooLong) {
		t.Fatalf("got %v, want ErrMessageTooLong", err)
	}
	_, err = Encode(make([]byte, 100), decoder.ECLevelL, &Params{MaxVersion: 3})
	if !errors.Is(err, qrcodec.ErrMessageTooLong) {
		t.Fatalf("version cap: got %v, want ErrMessageTooLong", err)
	}
}

func TestEncodeConcurrent(t *testing.T) {
	want, err := Encode([]byte("concurrent"), decoder.ECLevelQ, nil)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Encode([]byte("concurrent"), decoder.ECLevelQ, nil)
			if err != nil {
				t.Error(err)
				return
			}
			if !got.Matrix.Equals(want.Matrix) {
				t.Error("concurrent encode differs")
			}
		}()
	}
	wg.Wait()
}

func BenchmarkEncode(b *testing.B) {
	msg := bytes.Repeat([]byte("benchmark "), 20)
	for i := 0; i < b.N; i++ {
		if _, err := Encode(msg, decoder.ECLevelM, nil); err != nil {
			b.Fatal(err)
		}
	}
}
