/*
NAME
  text.go

DESCRIPTION
  text.go provides decoding of DVB SI text fields, which select their
  character table with an optional leading byte sequence, to UTF-8.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dvb provides decoding of DVB SI strings.
package dvb

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// Character table selector bytes.
const (
	selectISO8859   = 0x10 // Followed by 0x00 and the ISO/IEC 8859 part.
	selectUCS2      = 0x11
	selectKSX1001   = 0x12
	selectGB2312    = 0x13
	selectBig5      = 0x14
	selectUTF8      = 0x15
	selectEncTypeID = 0x1f
	firstPrintable  = 0x20
)

// Charset names an encoding chosen by a selector.
type Charset string

// Charsets.
const (
	ISO6937 Charset = "ISO6937"
	UTF8    Charset = "UTF-8"
	Unknown Charset = ""
)

type table struct {
	name       Charset
	enc        encoding.Encoding
	singleByte bool
}

// singleByte maps one byte selectors to ISO/IEC 8859 parts.
var singleByte = map[byte]table{
	0x01:          {"ISO-8859-5", charmap.ISO8859_5, true},
	0x02:          {"ISO-8859-6", charmap.ISO8859_6, true},
	0x03:          {"ISO-8859-7", charmap.ISO8859_7, true},
	0x04:          {"ISO-8859-8", charmap.ISO8859_8, true},
	0x05:          {"ISO-8859-9", charmap.ISO8859_9, true},
	0x06:          {"ISO-8859-10", charmap.ISO8859_10, true},
	0x07:          {"ISO-8859-11", charmap.Windows874, true},
	0x09:          {"ISO-8859-13", charmap.ISO8859_13, true},
	0x0a:          {"ISO-8859-14", charmap.ISO8859_14, true},
	0x0b:          {"ISO-8859-15", charmap.ISO8859_15, true},
	selectUCS2:    {"UCS-2BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), false},
	selectKSX1001: {"EUC-KR", korean.EUCKR, false},
	selectGB2312:  {"GB2312", simplifiedchinese.GBK, false},
	selectBig5:    {"BIG5", traditionalchinese.Big5, false},
}

// iso8859 maps the part number following a 0x10 0x00 selector.
var iso8859 = map[byte]table{
	1:  {"ISO-8859-1", charmap.ISO8859_1, true},
	2:  {"ISO-8859-2", charmap.ISO8859_2, true},
	3:  {"ISO-8859-3", charmap.ISO8859_3, true},
	4:  {"ISO-8859-4", charmap.ISO8859_4, true},
	5:  {"ISO-8859-5", charmap.ISO8859_5, true},
	6:  {"ISO-8859-6", charmap.ISO8859_6, true},
	7:  {"ISO-8859-7", charmap.ISO8859_7, true},
	8:  {"ISO-8859-8", charmap.ISO8859_8, true},
	9:  {"ISO-8859-9", charmap.ISO8859_9, true},
	10: {"ISO-8859-10", charmap.ISO8859_10, true},
	11: {"ISO-8859-11", charmap.Windows874, true},
	13: {"ISO-8859-13", charmap.ISO8859_13, true},
	14: {"ISO-8859-14", charmap.ISO8859_14, true},
	15: {"ISO-8859-15", charmap.ISO8859_15, true},
	16: {"ISO-8859-16", charmap.ISO8859_16, true},
}

// selectTable returns the character table selected by the start of b and the
// text that follows the selector. ok is false for reserved or unsupported
// selectors.
func selectTable(b []byte) (t table, text []byte, ok bool) {
	if len(b) == 0 || b[0] >= firstPrintable {
		return table{name: ISO6937}, b, true
	}
	switch b[0] {
	case selectUTF8:
		return table{name: UTF8}, b[1:], true
	case selectISO8859:
		if len(b) < 3 || b[1] != 0x00 {
			return table{}, b, false
		}
		t, ok = iso8859[b[2]]
		return t, b[3:], ok
	case selectEncTypeID:
		return table{}, b, false
	}
	t, ok = singleByte[b[0]]
	return t, b[1:], ok
}

// CharsetOf returns the name of the character table a DVB string selects, or
// Unknown for reserved and unsupported selectors.
func CharsetOf(b []byte) Charset {
	t, _, ok := selectTable(b)
	if !ok {
		return Unknown
	}
	return t.name
}

// DecodeString returns the UTF-8 form of the DVB string b. It never fails: a
// reserved or unsupported selector returns b unchanged as a string, and a
// conversion error returns the text after the selector unchanged.
func DecodeString(b []byte) string {
	t, text, ok := selectTable(b)
	if !ok {
		return string(b)
	}
	switch t.name {
	case ISO6937:
		return decodeISO6937(text)
	case UTF8:
		return string(text)
	}

	if t.singleByte {
		text = stripControls(text)
	}
	s, err := t.enc.NewDecoder().Bytes(text)
	if err != nil {
		return string(text)
	}
	return string(s)
}

// EncodeString returns s as a DVB string. Printable ASCII is left in the
// default table, anything else is selected as UTF-8.
func EncodeString(s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] < firstPrintable || s[i] >= 0x7f {
			return append([]byte{selectUTF8}, s...)
		}
	}
	return []byte(s)
}

// crlf is the DVB control code for a line break.
const crlf = 0x8a

// stripControls removes the DVB control codes 0x80 to 0x9f from single byte
// text, turning CR/LF into a newline.
func stripControls(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c == crlf:
			out = append(out, '\n')
		case c >= 0x80 && c <= 0x9f:
		default:
			out = append(out, c)
		}
	}
	return out
}

// iso6937Diacritics maps the non-spacing diacritical prefixes of ISO/IEC 6937
// to Unicode combining marks.
var iso6937Diacritics = map[byte]rune{
	0xc1: '\u0300', 0xc2: '\u0301', 0xc3: '\u0302', 0xc4: '\u0303',
	0xc5: '\u0304', 0xc6: '\u0306', 0xc7: '\u0307', 0xc8: '\u0308',
	0xca: '\u030a', 0xcb: '\u0327', 0xcd: '\u030b', 0xce: '\u0328',
	0xcf: '\u030c',
}

// iso6937Upper maps the remaining code points of the upper half of ISO/IEC
// 6937.
var iso6937Upper = map[byte]rune{
	0xa0: '\u00a0', 0xa1: '¡', 0xa2: '¢', 0xa3: '£', 0xa5: '¥', 0xa7: '§',
	0xa8: '¤', 0xa9: '‘', 0xaa: '“', 0xab: '«', 0xac: '←', 0xad: '↑',
	0xae: '→', 0xaf: '↓', 0xb0: '°', 0xb1: '±', 0xb2: '²', 0xb3: '³',
	0xb4: '×', 0xb5: 'µ', 0xb6: '¶', 0xb7: '·', 0xb8: '÷', 0xb9: '’',
	0xba: '”', 0xbb: '»', 0xbc: '¼', 0xbd: '½', 0xbe: '¾', 0xbf: '¿',
	0xd0: '―', 0xd1: '¹', 0xd2: '®', 0xd3: '©', 0xd4: '™', 0xd5: '♪',
	0xd6: '¬', 0xd7: '¦', 0xdc: '⅛', 0xdd: '⅜', 0xde: '⅝', 0xdf: '⅞',
	0xe0: 'Ω', 0xe1: 'Æ', 0xe2: 'Đ', 0xe3: 'ª', 0xe4: 'Ħ', 0xe6: 'Ĳ',
	0xe7: 'Ŀ', 0xe8: 'Ł', 0xe9: 'Ø', 0xea: 'Œ', 0xeb: 'º', 0xec: 'Þ',
	0xed: 'Ŧ', 0xee: 'Ŋ', 0xef: 'ŉ', 0xf0: 'ĸ', 0xf1: 'æ', 0xf2: 'đ',
	0xf3: 'ð', 0xf4: 'ħ', 0xf5: 'ı', 0xf6: 'ĳ', 0xf7: 'ŀ', 0xf8: 'ł',
	0xf9: 'ø', 0xfa: 'œ', 0xfb: 'ß', 0xfc: 'þ', 0xfd: 'ŧ', 0xfe: 'ŋ',
	0xff: '\u00ad',
}

// decodeISO6937 decodes the default DVB character table. Diacritical prefixes
// are emitted after their base letter and composed with NFC.
func decodeISO6937(b []byte) string {
	var sb strings.Builder
	var mark rune
	for _, c := range b {
		if m, ok := iso6937Diacritics[c]; ok {
			mark = m
			continue
		}

		var r rune
		switch {
		case c == crlf:
			r = '\n'
		case c < 0x80:
			r = rune(c)
		case c <= 0x9f:
			continue
		default:
			var ok bool
			if r, ok = iso6937Upper[c]; !ok {
				r = '\ufffd'
			}
		}
		sb.WriteRune(r)
		if mark != 0 {
			sb.WriteRune(mark)
			mark = 0
		}
	}
	return norm.NFC.String(sb.String())
}
