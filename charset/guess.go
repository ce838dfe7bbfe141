package charset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// GuessEncoding picks an encoding for payload bytes that carry no ECI. A
// named character set wins; otherwise a UTF-16 byte order mark or valid
// UTF-8 is recognised, and anything else is read as ISO-8859-1.
func GuessEncoding(data []byte, characterSet string) encoding.Encoding {
	if e := GetECIByName(characterSet); e != nil {
		return e.Encoding
	}
	if len(data) >= 2 && (bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})) {
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	if utf8.Valid(data) {
		return unicode.UTF8
	}
	return charmap.ISO8859_1
}

// DecodeBytes converts data to a UTF-8 string. The ECI in effect takes
// precedence over characterSet, which takes precedence over guessing.
func DecodeBytes(data []byte, eci *ECI, characterSet string) (string, error) {
	enc := GuessEncoding(data, characterSet)
	if eci != nil {
		enc = eci.Encoding
	}
	if enc == unicode.UTF8 {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
