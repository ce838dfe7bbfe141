// Package charset maps Extended Channel Interpretation designators to text
// encodings and turns byte segment payloads into strings.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ECI is a character set designator.
type ECI struct {
	Value    int
	Name     string
	Aliases  []string
	Encoding encoding.Encoding
}

// ECI values used directly by the codec.
const (
	ECIValueISO8859_1 = 3
	ECIValueUTF8      = 26
)

var ecis = []struct {
	values []int
	eci    *ECI
}{
	{[]int{0, 2}, &ECI{Name: "Cp437", Encoding: charmap.CodePage437}},
	{[]int{1, 3}, &ECI{Name: "ISO-8859-1", Aliases: []string{"ISO8859_1", "LATIN1"}, Encoding: charmap.ISO8859_1}},
	{[]int{4}, &ECI{Name: "ISO-8859-2", Aliases: []string{"ISO8859_2"}, Encoding: charmap.ISO8859_2}},
	{[]int{5}, &ECI{Name: "ISO-8859-3", Aliases: []string{"ISO8859_3"}, Encoding: charmap.ISO8859_3}},
	{[]int{6}, &ECI{Name: "ISO-8859-4", Aliases: []string{"ISO8859_4"}, Encoding: charmap.ISO8859_4}},
	{[]int{7}, &ECI{Name: "ISO-8859-5", Aliases: []string{"ISO8859_5"}, Encoding: charmap.ISO8859_5}},
	{[]int{8}, &ECI{Name: "ISO-8859-6", Aliases: []string{"ISO8859_6"}, Encoding: charmap.ISO8859_6}},
	{[]int{9}, &ECI{Name: "ISO-8859-7", Aliases: []string{"ISO8859_7"}, Encoding: charmap.ISO8859_7}},
	{[]int{10}, &ECI{Name: "ISO-8859-8", Aliases: []string{"ISO8859_8"}, Encoding: charmap.ISO8859_8}},
	{[]int{11}, &ECI{Name: "ISO-8859-9", Aliases: []string{"ISO8859_9"}, Encoding: charmap.ISO8859_9}},
	{[]int{12}, &ECI{Name: "ISO-8859-10", Aliases: []string{"ISO8859_10"}, Encoding: charmap.ISO8859_10}},
	// x/text has no ISO-8859-11 table; Windows-874 is a superset of it.
	{[]int{13}, &ECI{Name: "ISO-8859-11", Aliases: []string{"ISO8859_11"}, Encoding: charmap.Windows874}},
	{[]int{15}, &ECI{Name: "ISO-8859-13", Aliases: []string{"ISO8859_13"}, Encoding: charmap.ISO8859_13}},
	{[]int{16}, &ECI{Name: "ISO-8859-14", Aliases: []string{"ISO8859_14"}, Encoding: charmap.ISO8859_14}},
	{[]int{17}, &ECI{Name: "ISO-8859-15", Aliases: []string{"ISO8859_15"}, Encoding: charmap.ISO8859_15}},
	{[]int{18}, &ECI{Name: "ISO-8859-16", Aliases: []string{"ISO8859_16"}, Encoding: charmap.ISO8859_16}},
	{[]int{20}, &ECI{Name: "Shift_JIS", Aliases: []string{"SJIS"}, Encoding: japanese.ShiftJIS}},
	{[]int{21}, &ECI{Name: "windows-1250", Aliases: []string{"Cp1250"}, Encoding: charmap.Windows1250}},
	{[]int{22}, &ECI{Name: "windows-1251", Aliases: []string{"Cp1251"}, Encoding: charmap.Windows1251}},
	{[]int{23}, &ECI{Name: "windows-1252", Aliases: []string{"Cp1252"}, Encoding: charmap.Windows1252}},
	{[]int{24}, &ECI{Name: "windows-1256", Aliases: []string{"Cp1256"}, Encoding: charmap.Windows1256}},
	{[]int{25}, &ECI{Name: "UTF-16BE", Aliases: []string{"UnicodeBig", "UnicodeBigUnmarked"}, Encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)}},
	{[]int{26}, &ECI{Name: "UTF-8", Aliases: []string{"UTF8"}, Encoding: unicode.UTF8}},
	{[]int{27, 170}, &ECI{Name: "US-ASCII", Aliases: []string{"ASCII"}, Encoding: charmap.Windows1252}},
	{[]int{28}, &ECI{Name: "Big5", Encoding: traditionalchinese.Big5}},
	{[]int{29}, &ECI{Name: "GB18030", Aliases: []string{"GB2312", "EUC_CN", "GBK"}, Encoding: simplifiedchinese.GB18030}},
	{[]int{30}, &ECI{Name: "EUC-KR", Aliases: []string{"EUC_KR"}, Encoding: korean.EUCKR}},
}

var (
	byValue = map[int]*ECI{}
	byName  = map[string]*ECI{}
)

func init() {
	for _, e := range ecis {
		e.eci.Value = e.values[0]
		for _, v := range e.values {
			byValue[v] = e.eci
		}
		byName[strings.ToUpper(e.eci.Name)] = e.eci
		for _, a := range e.eci.Aliases {
			byName[strings.ToUpper(a)] = e.eci
		}
	}
}

// GetECIByValue returns the ECI for a designator value. Values outside
// [0, 999999] are invalid; unassigned values in range return nil.
func GetECIByValue(value int) (*ECI, error) {
	if value < 0 || value > 999999 {
		return nil, fmt.Errorf("charset: bad ECI value %d", value)
	}
	return byValue[value], nil
}

// GetECIByName returns the ECI registered under name or one of its
// aliases, case-insensitively. Names unknown to the table are looked up in
// the IANA registry; those have no designator value and report -1.
func GetECIByName(name string) *ECI {
	if name == "" {
		return nil
	}
	if e, ok := byName[strings.ToUpper(name)]; ok {
		return e
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil
	}
	return &ECI{Value: -1, Name: name, Encoding: enc}
}

func (e *ECI) String() string {
	return fmt.Sprintf("ECI(%d, %s)", e.Value, e.Name)
}
