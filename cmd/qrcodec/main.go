// Command qrcodec encodes text as a QR code for the terminal or a PBM
// image, and decodes QR codes from PNG, JPEG and GIF files.
package main

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/qrcode"
)

var g = struct {
	level     string // minimum error correction level
	format    string // output format
	margin    int    // quiet zone in modules
	scale     int    // pixels per module, pbm only
	eci       bool   // UTF-8 ECI designator
	out       string // output file
	decode    bool   // decode images instead of encoding
	global    bool   // global thresholding
	tryHarder bool   // scan every row
	pure      bool   // image is a clean render
	charset   string // byte segment encoding hint
	verbose   bool   // debug logging
}{
	level:  "L",
	margin: qrcode.DefaultMargin,
	scale:  1,
}

var formats = []string{"utf8", "ascii", "pbm"}

func parseFlags() {
	getopt.SetParameters("[text ...] | -d image ...")
	help := getopt.BoolLong("help", 'h', "show this help")
	getopt.FlagLong(&g.level, "level", 'l', "minimum error correction level", "L|M|Q|H")
	getopt.FlagLong(&g.format, "type", 't', "output format, one of "+strings.Join(formats, ", ")+
		"; default utf8 on a terminal without -o, pbm otherwise", "type")
	getopt.FlagLong(&g.margin, "margin", 'm', "quiet zone in modules", "modules")
	getopt.FlagLong(&g.scale, "scale", 's', "pixels per module for pbm", "pixels")
	getopt.FlagLong(&g.eci, "eci", 'e', "prefix the data with the UTF-8 ECI designator")
	getopt.FlagLong(&g.out, "output", 'o', `output file, or "-" for standard output`, "file")
	getopt.FlagLong(&g.decode, "decode", 'd', "decode the QR code in each image file")
	getopt.FlagLong(&g.global, "global", 'g', "use one global threshold when decoding")
	getopt.FlagLong(&g.tryHarder, "try-harder", 'T', "scan every row for finder patterns")
	getopt.FlagLong(&g.pure, "pure", 'P', "image holds an unrotated render and its quiet zone only")
	getopt.FlagLong(&g.charset, "charset", 'c', "encoding of byte segments without ECI", "name")
	getopt.FlagLong(&g.verbose, "verbose", 'v', "log each stage to standard error")

	getopt.Parse()
	if *help {
		getopt.PrintUsage(os.Stdout)
		os.Exit(0)
	}
	if g.format == "" {
		if (g.out == "" || g.out == "-") && isatty.IsTerminal(os.Stdout.Fd()) {
			g.format = "utf8"
		} else {
			g.format = "pbm"
		}
	}
	valid := false
	for _, f := range formats {
		valid = valid || f == g.format
	}
	if !valid {
		fmt.Fprintf(os.Stderr, "unknown output format %q\n", g.format)
		getopt.Usage()
		os.Exit(2)
	}
	if g.out == "-" {
		g.out = ""
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		ForceColors:      isatty.IsTerminal(os.Stderr.Fd()),
	})
	if g.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func main() {
	parseFlags()
	log := newLogger()

	if g.decode {
		os.Exit(decodeFiles(getopt.Args(), log))
	}

	text, err := input(getopt.Args())
	if err != nil {
		log.Fatal(err)
	}
	margin := g.margin
	sym, err := qrcode.NewWriter().Encode(text, &qrcodec.EncodeOptions{
		ErrorCorrection: g.level,
		Margin:          &margin,
		ECI:             g.eci,
		Logger:          log,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{
		"version": sym.Version(),
		"level":   sym.Level().String(),
		"mask":    sym.MaskPattern(),
	}).Debug("encoded")

	if err := output(sym); err != nil {
		log.Fatal(err)
	}
}

// input joins the arguments with spaces, or reads standard input without
// its final newline.
func input(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return strings.TrimSuffix(s, "\n"), nil
}

// create opens the output file.
var create = func(name string) (io.WriteCloser, error) { return os.Create(name) }

// output writes sym to the output file or standard output. An error closing
// the file is reported when writing succeeded.
func output(sym *qrcode.Symbol) (err error) {
	w := io.Writer(os.Stdout)
	if g.out != "" {
		var f io.WriteCloser
		if f, err = create(g.out); err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	return render(w, sym)
}

// render writes sym to w in the selected format.
func render(w io.Writer, sym *qrcode.Symbol) error {
	bw := bufio.NewWriter(w)
	var err error
	switch g.format {
	case "utf8":
		err = writeUTF8(bw, sym, g.margin)
	case "ascii":
		err = writeASCII(bw, sym, g.margin)
	case "pbm":
		err = writePBM(bw, sym, g.scale, g.margin)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func decodeFiles(paths []string, log *logrus.Logger) int {
	if len(paths) == 0 {
		getopt.Usage()
		return 2
	}
	opts := &qrcodec.DecodeOptions{
		TryHarder:    g.tryHarder,
		PureBarcode:  g.pure,
		CharacterSet: g.charset,
		Logger:       log,
	}
	if g.global {
		opts.Thresholding = qrcodec.ThresholdGlobal
	}

	status := 0
	for _, path := range paths {
		res, err := decodeFile(path, opts)
		if err != nil {
			log.WithField("file", path).Error(err)
			status = 1
			continue
		}
		if len(paths) > 1 {
			fmt.Printf("%s: ", path)
		}
		fmt.Println(res.Text)
	}
	return status
}

func decodeFile(path string, opts *qrcodec.DecodeOptions) (*qrcodec.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return qrcode.DecodeImage(img, opts)
}
