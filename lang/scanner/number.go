package scanner

import (
	"strconv"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// scanNumber implements the numeric literal grammar of spec component G:
// decimal, 0x hexadecimal, and C-style octal-with-leading-zero. It always
// resolves the value eagerly into val.Int or val.Float.
func (s *Scanner) scanNumber(val *token.Value) (token.Token, string) {
	start := s.offset

	if s.ch == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.next()
		s.next()
		hexStart := s.offset
		for isHexDigit(s.ch) {
			s.next()
		}
		raw := string(s.src[start:s.offset])
		n, err := strconv.ParseInt(string(s.src[hexStart:s.offset]), 16, 64)
		if err != nil {
			s.error(start, "malformed hexadecimal literal")
		}
		val.Int = n
		return token.INT, raw
	}

	// ES3 accepts a leading-zero octal literal unconditionally (sloppy
	// mode); spec §9's second open question leaves the strict-mode policy to
	// the embedder. lorelei accepts it in both modes, as the source material
	// does, and lets a future strict-mode pass reject it if desired.
	if s.ch == '0' && isOctalDigit(rune(s.peek())) {
		s.next()
		octStart := s.offset
		for isOctalDigit(s.ch) {
			s.next()
		}
		raw := string(s.src[start:s.offset])
		n, err := strconv.ParseInt(string(s.src[octStart:s.offset]), 8, 64)
		if err != nil {
			s.error(start, "malformed octal literal")
		}
		val.Int = n
		return token.INT, raw
	}

	isFloat := false
	for isASCIIDigit(s.ch) {
		s.next()
	}
	if s.ch == '.' {
		isFloat = true
		s.next()
		for isASCIIDigit(s.ch) {
			s.next()
		}
	}
	if s.ch == 'e' || s.ch == 'E' {
		isFloat = true
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		for isASCIIDigit(s.ch) {
			s.next()
		}
	}

	raw := string(s.src[start:s.offset])
	if isFloat {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil && !s.ScanLenient {
			s.error(start, "malformed floating point literal")
		}
		val.Float = f
		return token.FLOAT, raw
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// overflow: represent as a float, matching the "numeric twin
		// representation" of spec component B (values are promoted lazily).
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr == nil {
			val.Float = f
			return token.FLOAT, raw
		}
		if !s.ScanLenient {
			s.error(start, "malformed integer literal")
		}
	}
	val.Int = n
	return token.INT, raw
}

func isHexDigit(r rune) bool {
	return hexVal(byte(r)) >= 0
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }

// ScanLooseFloat implements the parseFloat built-in's lenient grammar: scan
// the longest valid numeric prefix of s and return it with the number of
// bytes consumed, or ok=false if no digits were present at all.
func ScanLooseFloat(s string) (f float64, n int, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isASCIIDigit(rune(s[i])) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isASCIIDigit(rune(s[i])) {
			i++
		}
	}
	if i == start || (i == start+1 && s[start] == '.') {
		// check for Infinity
		if strings.HasPrefix(s[start:], "Infinity") {
			v := 1.0
			if strings.HasPrefix(s[:start], "-") {
				v = -1
			}
			return v * posInf(), start + len("Infinity"), true
		}
		return 0, 0, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isASCIIDigit(rune(s[k])) {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, 0, false
	}
	return v, i, true
}

func posInf() float64 { return 1.0 / zero() }
func zero() float64   { return 0.0 }
