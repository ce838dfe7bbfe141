package main

import (
	"fmt"
	"io"

	"github.com/skykywind/qrcodec/qrcode"
)

// writeUTF8 draws two module rows per text line with half blocks. Light
// modules are drawn, so the code reads on a dark terminal background.
func writeUTF8(w io.Writer, sym *qrcode.Symbol, margin int) error {
	n := sym.Size()
	light := func(x, y int) bool { return y < n+margin && !sym.Dark(x, y) }
	for y := -margin; y < n+margin; y += 2 {
		for x := -margin; x < n+margin; x++ {
			var s string
			switch top, bottom := light(x, y), light(x, y+1); {
			case top && bottom:
				s = "█"
			case top:
				s = "▀"
			case bottom:
				s = "▄"
			default:
				s = " "
			}
			if _, err := io.WriteString(w, s); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeASCII draws each module as two characters, "##" for dark.
func writeASCII(w io.Writer, sym *qrcode.Symbol, margin int) error {
	n := sym.Size()
	line := make([]byte, 0, 2*(n+2*margin)+1)
	for y := -margin; y < n+margin; y++ {
		line = line[:0]
		for x := -margin; x < n+margin; x++ {
			if sym.Dark(x, y) {
				line = append(line, "##"...)
			} else {
				line = append(line, "  "...)
			}
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// writePBM writes a binary (P4) portable bitmap, 1 meaning dark.
func writePBM(w io.Writer, sym *qrcode.Symbol, scale, margin int) error {
	m := sym.Render(scale, margin)
	width, height := m.Width(), m.Height()
	if _, err := fmt.Fprintf(w, "P4\n%d %d\n", width, height); err != nil {
		return err
	}
	row := make([]byte, (width+7)/8)
	for y := 0; y < height; y++ {
		clear(row)
		for x := 0; x < width; x++ {
			if m.Get(x, y) {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
