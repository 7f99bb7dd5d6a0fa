package scanner

import (
	"bytes"
	"unicode/utf8"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// scanString resolves escapes \b \f \n \r \t \v \xHH \uHHHH \0..\377, a
// backslash-newline continuation, and produces the decoded value in
// val.Str. quote is the opening/closing delimiter, ' or ".
func (s *Scanner) scanString(val *token.Value, quote byte) (token.Token, string) {
	start := s.offset
	s.next() // consume opening quote

	var buf bytes.Buffer
	for {
		if s.ch == -1 || isLineTerminator(s.ch) {
			s.error(start, "string literal not terminated")
			break
		}
		if s.ch == rune(quote) {
			s.next()
			break
		}
		if s.ch == '\\' {
			s.next()
			s.scanEscape(&buf)
			continue
		}
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], s.ch)
		buf.Write(tmp[:n])
		s.next()
	}

	raw := string(s.src[start:s.offset])
	val.Str = buf.String()
	return token.STRING, raw
}

func (s *Scanner) scanEscape(buf *bytes.Buffer) {
	switch s.ch {
	case 'b':
		buf.WriteByte('\b')
		s.next()
	case 'f':
		buf.WriteByte('\f')
		s.next()
	case 'n':
		buf.WriteByte('\n')
		s.next()
	case 'r':
		buf.WriteByte('\r')
		s.next()
	case 't':
		buf.WriteByte('\t')
		s.next()
	case 'v':
		buf.WriteByte('\v')
		s.next()
	case '\n', '\r':
		// backslash-newline line continuation: the escaped newline produces no
		// character in the resulting string.
		nl := s.ch
		s.next()
		if nl == '\r' && s.ch == '\n' {
			s.next()
		}
	case 'x':
		s.next()
		v := 0
		for i := 0; i < 2; i++ {
			d := hexVal(byte(s.ch))
			if d < 0 {
				s.error(s.offset, "invalid hex escape")
				break
			}
			v = v<<4 | d
			s.next()
		}
		buf.WriteByte(byte(v))
	case 'u':
		s.next()
		r := s.scanUnicodeEscape()
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], r)
		buf.Write(tmp[:n])
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// octal escape \0 .. \377
		v := 0
		for i := 0; i < 3 && isOctalDigit(s.ch); i++ {
			v = v<<3 + int(s.ch-'0')
			s.next()
		}
		buf.WriteByte(byte(v))
	default:
		// any other escaped char stands for itself (ES3 §7.8.4 NonEscapeCharacter)
		var tmp [utf8.UTFMax]byte
		n := utf8.EncodeRune(tmp[:], s.ch)
		buf.Write(tmp[:n])
		s.next()
	}
}

// scanRegexp consumes a regex literal, starting at the opening '/', until
// the matching unescaped '/', then its trailing flag letters.
func (s *Scanner) scanRegexp(val *token.Value) (token.Token, string) {
	start := s.offset
	s.next() // consume '/'

	inClass := false
	for {
		if s.ch == -1 || isLineTerminator(s.ch) {
			s.error(start, "unterminated regular expression literal")
			break
		}
		if s.ch == '\\' {
			s.next()
			if s.ch != -1 {
				s.next()
			}
			continue
		}
		if s.ch == '[' {
			inClass = true
		} else if s.ch == ']' {
			inClass = false
		} else if s.ch == '/' && !inClass {
			s.next()
			break
		}
		s.next()
	}
	for isIDPart(s.ch) {
		s.next()
	}

	raw := string(s.src[start:s.offset])
	val.Str = raw
	return token.REGEXP, raw
}
