package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/lang/token"
)

func scanAll(t *testing.T, src string, regexPositions map[int]bool) []token.Value {
	t.Helper()
	var s Scanner
	f := token.NewFile("t.js", len(src))
	var errs token.ErrorList
	s.Init(f, []byte(src), errs.Add)

	var out []token.Value
	var val token.Value
	for i := 0; ; i++ {
		if regexPositions[i] {
			s.InRegexContext = true
		}
		tok := s.Scan(&val)
		out = append(out, val)
		if tok == token.EOF {
			break
		}
	}
	require.Empty(t, errs)
	return out
}

func TestScanPunctAndKeywords(t *testing.T) {
	toks := scanAll(t, "var x = 1 + 2;", nil)
	kinds := make([]token.Token, 0, len(toks))
	for _, v := range toks {
		kinds = append(kinds, v.Tok)
	}
	assert.Equal(t, []token.Token{
		token.VAR, token.IDENT, token.EQ, token.INT, token.PLUS, token.INT, token.SEMI, token.EOF,
	}, kinds)
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"a\nb\x41B"`, nil)
	require.Equal(t, token.STRING, toks[0].Tok)
	assert.Equal(t, "a\nbAB", toks[0].Str)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "0x1F 0173 3.14 1e3", nil)
	require.Len(t, toks, 5)
	assert.Equal(t, int64(31), toks[0].Int)
	assert.Equal(t, int64(123), toks[1].Int) // octal 0173 == decimal 123
	assert.InDelta(t, 3.14, toks[2].Float, 1e-9)
	assert.InDelta(t, 1000.0, toks[3].Float, 1e-9)
}

func TestScanIdentifierEscape(t *testing.T) {
	toks := scanAll(t, "a\x5cu0062c", nil) // a, backslash-u escape of 'b', c
	require.Equal(t, token.IDENT, toks[0].Tok)
	assert.Equal(t, "abc", toks[0].Str)
}

func TestScanRegexLiteral(t *testing.T) {
	toks := scanAll(t, `/a(b+)c/gi`, map[int]bool{0: true})
	require.Equal(t, token.REGEXP, toks[0].Tok)
	assert.Equal(t, "/a(b+)c/gi", toks[0].Str)
}

func TestLineBreakTracksASI(t *testing.T) {
	toks := scanAll(t, "a\nb", nil)
	require.Len(t, toks, 3)
	assert.False(t, toks[0].LineBreakBefore)
	assert.True(t, toks[1].LineBreakBefore)
}

func TestFutureReservedWordScansAsKeyword(t *testing.T) {
	toks := scanAll(t, "class", nil)
	assert.True(t, token.IsFutureReserved(toks[0].Tok))
}
