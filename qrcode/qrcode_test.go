package qrcode

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/makiuchi-d/gozxing"
	gzqrcode "github.com/makiuchi-d/gozxing/qrcode"
	skip2 "github.com/skip2/go-qrcode"
	"rsc.io/qr"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/qrcode/decoder"
)

var levels = []decoder.ErrorCorrectionLevel{decoder.ECLevelL, decoder.ECLevelM, decoder.ECLevelQ, decoder.ECLevelH}

func mustEncode(t testing.TB, message string, level decoder.ErrorCorrectionLevel) *Symbol {
	t.Helper()
	s, err := Encode(message, level)
	if err != nil {
		t.Fatalf("Encode(%q, %s): %v", message, level, err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	messages := []string{
		"",
		"a",
		"Hello, World! This is a test.",
		"héllo wörld, ça va? ✓",
		"日本語のテキスト",
		strings.Repeat("0123456789abcdef", 20),
	}
	for _, level := range levels {
		for i, msg := range messages {
			level, msg := level, msg
			t.Run(fmt.Sprintf("%s/%d", level, i), func(t *testing.T) {
				t.Parallel()
				s := mustEncode(t, msg, level)
				if s.Level() < level {
					t.Fatalf("level %s below requested %s", s.Level(), level)
				}
				pix, w, h := s.Pixels(3, DefaultMargin)
				got, err := Decode(pix, w, h)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if got != msg {
					t.Errorf("got %q, want %q", got, msg)
				}
			})
		}
	}
}

// Near-capacity payloads at large versions fill the data region, where
// stray runs may look like finder patterns.
func TestRoundTripLargeVersions(t *testing.T) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789 ./-_"
	for _, version := range []int{14, 17, 20, 23, 27, 31, 35, 40} {
		for _, level := range levels {
			for _, scale := range []int{1, 3} {
				version, level, scale := version, level, scale
				t.Run(fmt.Sprintf("v%d/%s/x%d", version, level, scale), func(t *testing.T) {
					t.Parallel()
					v, err := decoder.GetVersionForNumber(version)
					if err != nil {
						t.Fatal(err)
					}
					// Mode and 16-bit count take three codewords.
					msg := make([]byte, v.DataCodewords(level)-3)
					rng := rand.New(rand.NewSource(int64(version*31 + int(level)*7 + scale)))
					for i := range msg {
						msg[i] = letters[rng.Intn(len(letters))]
					}
					s, err := NewWriter().Encode(string(msg), &qrcodec.EncodeOptions{
						ErrorCorrection: level.String(),
						QRVersion:       version,
					})
					if err != nil {
						t.Fatal(err)
					}
					if s.Version() != version || s.Level() != level {
						t.Fatalf("got v%d-%s", s.Version(), s.Level())
					}
					pix, w, h := s.Pixels(scale, DefaultMargin)
					got, err := Decode(pix, w, h)
					if err != nil {
						t.Fatalf("Decode: %v", err)
					}
					if got != string(msg) {
						t.Errorf("decoded text differs from the %d-byte message", len(msg))
					}
				})
			}
		}
	}
}

func TestRoundTripThresholding(t *testing.T) {
	s := mustEncode(t, "global or local", decoder.ECLevelQ)
	pix, w, h := s.Pixels(4, DefaultMargin)
	for _, mode := range []qrcodec.Thresholding{qrcodec.ThresholdLocal, qrcodec.ThresholdGlobal} {
		res, err := DecodeWithOptions(pix, w, h, &qrcodec.DecodeOptions{Thresholding: mode})
		if err != nil {
			t.Fatalf("mode %d: %v", mode, err)
		}
		if res.Text != "global or local" {
			t.Errorf("mode %d: got %q", mode, res.Text)
		}
	}
}

func TestHelloQRCode(t *testing.T) {
	s := mustEncode(t, "Hello QRCode", decoder.ECLevelM)
	if s.Size() != 21 || s.Version() != 1 {
		t.Fatalf("got %dx%d version %d, want 21x21 version 1", s.Size(), s.Size(), s.Version())
	}
	if s.Level() != decoder.ECLevelM {
		t.Errorf("level %s, want M", s.Level())
	}
	pix, w, h := s.Pixels(4, DefaultMargin)
	res, err := DecodeWithOptions(pix, w, h, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "Hello QRCode" {
		t.Errorf("got %q", res.Text)
	}
	if v := res.Metadata[qrcodec.MetadataVersion]; v != 1 {
		t.Errorf("version metadata %v", v)
	}
	if l := res.Metadata[qrcodec.MetadataErrorCorrectionLevel]; l != "M" {
		t.Errorf("level metadata %v", l)
	}
	if m := res.Metadata[qrcodec.MetadataMaskPattern]; m != s.MaskPattern() {
		t.Errorf("mask metadata %v, want %d", m, s.MaskPattern())
	}
	if id := res.Metadata[qrcodec.MetadataSymbologyIdentifier]; id != "]Q1" {
		t.Errorf("symbology identifier %v", id)
	}
	if len(res.Points) != 3 {
		t.Errorf("got %d points", len(res.Points))
	}
}

func TestDecodeAllWhite(t *testing.T) {
	for _, size := range [][2]int{{200, 200}, {30, 20}, {640, 480}} {
		pix := make([]byte, size[0]*size[1])
		for i := range pix {
			pix[i] = 0xFF
		}
		for _, mode := range []qrcodec.Thresholding{qrcodec.ThresholdLocal, qrcodec.ThresholdGlobal} {
			_, err := DecodeWithOptions(pix, size[0], size[1], &qrcodec.DecodeOptions{Thresholding: mode})
			if !errors.Is(err, qrcodec.ErrNotFound) {
				t.Errorf("%dx%d mode %d: got %v, want ErrNotFound", size[0], size[1], mode, err)
			}
		}
	}
}

func TestDecodeBadBuffer(t *testing.T) {
	if _, err := Decode(make([]byte, 10), 4, 4); !errors.Is(err, qrcodec.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestDeterminism(t *testing.T) {
	for _, level := range levels {
		a := mustEncode(t, "same input, same grid", level)
		b := mustEncode(t, "same input, same grid", level)
		if !a.Matrix().Equals(b.Matrix()) || a.MaskPattern() != b.MaskPattern() {
			t.Errorf("level %s: encodes differ", level)
		}
	}
}

// flipCodewords inverts every module of the given codewords.
func flipCodewords(s *Symbol, indexes ...int) *Symbol {
	var modules [][2]int
	decoder.ForEachDataModule(s.code.Version, func(x, y int) {
		modules = append(modules, [2]int{x, y})
	})
	code := *s.code
	code.Matrix = s.code.Matrix.Clone()
	for _, i := range indexes {
		for _, m := range modules[8*i : 8*i+8] {
			code.Matrix.Flip(m[0], m[1])
		}
	}
	return &Symbol{code: &code}
}

func TestErrorCorrectionBound(t *testing.T) {
	// Each message fills version 1 at its level, so no boost happens and
	// every level has a single block.
	messages := map[decoder.ErrorCorrectionLevel]string{
		decoder.ECLevelL: "abcdefghijklmnopq",
		decoder.ECLevelM: "abcdefghijklmn",
		decoder.ECLevelQ: "abcdefghijk",
		decoder.ECLevelH: "abcdefg",
	}
	for _, level := range levels {
		msg := messages[level]
		s := mustEncode(t, msg, level)
		if s.Version() != 1 || s.Level() != level {
			t.Fatalf("%s: got version %d level %s", level, s.Version(), s.Level())
		}
		correctable := s.code.Version.ECBlocksForLevel(level).ECCodewordsPerBlock / 2

		var idx []int
		for i := 0; i <= correctable; i++ {
			idx = append(idx, (i*5)%26)
		}

		pix, w, h := flipCodewords(s, idx[:correctable]...).Pixels(3, DefaultMargin)
		res, err := DecodeWithOptions(pix, w, h, nil)
		if err != nil {
			t.Fatalf("%s: %d errors: %v", level, correctable, err)
		}
		if res.Text != msg {
			t.Errorf("%s: got %q", level, res.Text)
		}
		if n := res.Metadata[qrcodec.MetadataErrorsCorrected]; n != correctable {
			t.Errorf("%s: corrected %v, want %d", level, n, correctable)
		}

		pix, w, h = flipCodewords(s, idx...).Pixels(3, DefaultMargin)
		if _, err := Decode(pix, w, h); !errors.Is(err, qrcodec.ErrUncorrectableBlock) {
			t.Errorf("%s: %d errors: got %v, want ErrUncorrectableBlock", level, correctable+1, err)
		}
	}
}

func TestPureBarcode(t *testing.T) {
	s := mustEncode(t, "pure barcode path", decoder.ECLevelH)
	for _, scale := range []int{1, 2, 5} {
		pix, w, h := s.Pixels(scale, 2)
		res, err := DecodeWithOptions(pix, w, h, &qrcodec.DecodeOptions{PureBarcode: true})
		if err != nil {
			t.Fatalf("scale %d: %v", scale, err)
		}
		if res.Text != "pure barcode path" || res.Points != nil {
			t.Errorf("scale %d: got %q with points %v", scale, res.Text, res.Points)
		}
	}
}

func TestMirrored(t *testing.T) {
	s := mustEncode(t, "seen in a mirror", decoder.ECLevelM)
	pix, w, h := s.Pixels(4, DefaultMargin)
	for y := 0; y < h; y++ {
		row := pix[y*w : (y+1)*w]
		for i, j := 0, w-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	res, err := DecodeWithOptions(pix, w, h, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "seen in a mirror" {
		t.Errorf("got %q", res.Text)
	}
	if res.Metadata[qrcodec.MetadataMirrored] != true {
		t.Error("mirrored flag not set")
	}
}

func TestWriterOptions(t *testing.T) {
	mask, margin := 3, 1
	s, err := NewWriter().Encode("writer options", &qrcodec.EncodeOptions{
		ErrorCorrection: "q",
		QRVersion:       4,
		QRMaskPattern:   &mask,
		Margin:          &margin,
	})
	if err != nil {
		t.Fatal(err)
	}
	if s.Version() != 4 || s.MaskPattern() != 3 || s.Level() != decoder.ECLevelH {
		t.Errorf("got version %d mask %d level %s", s.Version(), s.MaskPattern(), s.Level())
	}
	if got := Margin(&qrcodec.EncodeOptions{Margin: &margin}); got != 1 {
		t.Errorf("Margin = %d", got)
	}
	if got := Margin(nil); got != DefaultMargin {
		t.Errorf("default Margin = %d", got)
	}

	bad := []*qrcodec.EncodeOptions{
		{ErrorCorrection: "X"},
		{QRVersion: 41},
		{QRVersion: -1},
		{MinVersion: 10, MaxVersion: 5},
	}
	for _, opts := range bad {
		if _, err := NewWriter().Encode("x", opts); !errors.Is(err, qrcodec.ErrInvalidArgument) {
			t.Errorf("%+v: got %v, want ErrInvalidArgument", opts, err)
		}
	}
	if _, err := NewWriter().Encode(strings.Repeat("x", 100), &qrcodec.EncodeOptions{MaxVersion: 2}); !errors.Is(err, qrcodec.ErrMessageTooLong) {
		t.Errorf("got %v, want ErrMessageTooLong", err)
	}
}

func TestECIRoundTrip(t *testing.T) {
	s, err := NewWriter().Encode("grüße ✓", &qrcodec.EncodeOptions{ECI: true})
	if err != nil {
		t.Fatal(err)
	}
	pix, w, h := s.Pixels(3, DefaultMargin)
	// The ECI designator wins over the character set hint.
	res, err := DecodeWithOptions(pix, w, h, &qrcodec.DecodeOptions{CharacterSet: "ISO-8859-1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "grüße ✓" {
		t.Errorf("got %q", res.Text)
	}
	if id := res.Metadata[qrcodec.MetadataSymbologyIdentifier]; id != "]Q2" {
		t.Errorf("symbology identifier %v", id)
	}
}

func TestSymbolRendering(t *testing.T) {
	s := mustEncode(t, "render", decoder.ECLevelL)
	n := s.Size()
	m := s.Render(3, 2)
	if m.Width() != (n+4)*3 {
		t.Fatalf("render width %d", m.Width())
	}
	bitmap := s.Bitmap()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if bitmap[y][x] != s.Dark(x, y) || m.Get((x+2)*3+1, (y+2)*3+1) != s.Dark(x, y) {
				t.Fatalf("module (%d,%d) disagrees", x, y)
			}
		}
	}
	if s.Dark(-1, 0) || s.Dark(n, n) {
		t.Error("outside modules must be light")
	}
	img := s.Image(2, 0)
	if b := img.Bounds(); b.Dx() != 2*n || b.Dy() != 2*n {
		t.Errorf("image bounds %v", b)
	}
	if img.GrayAt(0, 0).Y != 0 {
		t.Error("finder corner should be dark")
	}
	if r := s.Render(0, -1); r.Width() != n {
		t.Errorf("clamped render width %d, want %d", r.Width(), n)
	}
}

func TestDecodeImage(t *testing.T) {
	s := mustEncode(t, "from an image.Image", decoder.ECLevelM)
	res, err := DecodeImage(s.Image(4, DefaultMargin), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "from an image.Image" {
		t.Errorf("got %q", res.Text)
	}
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := fmt.Sprintf("worker %d says hello", i)
			s, err := Encode(msg, levels[i%4])
			if err != nil {
				errs <- err
				return
			}
			pix, w, h := s.Pixels(2+i%3, DefaultMargin)
			got, err := Decode(pix, w, h)
			if err != nil {
				errs <- err
				return
			}
			if got != msg {
				errs <- fmt.Errorf("got %q, want %q", got, msg)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func grayFromBools(rows [][]bool, scale int) ([]byte, int) {
	n := len(rows) * scale
	pix := make([]byte, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !rows[y/scale][x/scale] {
				pix[y*n+x] = 0xFF
			}
		}
	}
	return pix, n
}

func TestDecodeSkip2(t *testing.T) {
	// Lowercase letters and underscores keep the whole message in byte mode.
	levels := map[skip2.RecoveryLevel]string{skip2.Low: "low", skip2.Medium: "medium", skip2.High: "high", skip2.Highest: "highest"}
	for level, name := range levels {
		msg := "encoded_elsewhere_at_" + name
		q, err := skip2.New(msg, level)
		if err != nil {
			t.Fatal(err)
		}
		pix, n := grayFromBools(q.Bitmap(), 3)
		got, err := Decode(pix, n, n)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if got != msg {
			t.Errorf("level %d: got %q", level, got)
		}
	}
}

func TestDecodeRSCQR(t *testing.T) {
	for _, level := range []qr.Level{qr.L, qr.M, qr.Q, qr.H} {
		msg := fmt.Sprintf("https://example.com/path?level=%d", level)
		code, err := qr.Encode(msg, level)
		if err != nil {
			t.Fatal(err)
		}
		rows := make([][]bool, code.Size+8)
		for y := range rows {
			rows[y] = make([]bool, code.Size+8)
			if y < 4 || y >= code.Size+4 {
				continue
			}
			for x := 0; x < code.Size; x++ {
				rows[y][x+4] = code.Black(x, y-4)
			}
		}
		pix, n := grayFromBools(rows, 3)
		got, err := Decode(pix, n, n)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if got != msg {
			t.Errorf("level %d: got %q", level, got)
		}
	}
}

func TestGozxingReadsOurSymbols(t *testing.T) {
	for _, level := range levels {
		msg := "read by another decoder, level " + level.String()
		s := mustEncode(t, msg, level)
		bmp, err := gozxing.NewBinaryBitmapFromImage(s.Image(4, DefaultMargin))
		if err != nil {
			t.Fatal(err)
		}
		res, err := gzqrcode.NewQRCodeReader().Decode(bmp, nil)
		if err != nil {
			t.Fatalf("%s: %v", level, err)
		}
		if res.GetText() != msg {
			t.Errorf("%s: got %q", level, res.GetText())
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	msg := strings.Repeat("benchmark ", 20)
	for i := 0; i < b.N; i++ {
		if _, err := Encode(msg, decoder.ECLevelM); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	s := mustEncode(b, strings.Repeat("benchmark ", 20), decoder.ECLevelM)
	pix, w, h := s.Pixels(3, DefaultMargin)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(pix, w, h); err != nil {
			b.Fatal(err)
		}
	}
}
