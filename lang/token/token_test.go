package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosRoundTrip(t *testing.T) {
	f := NewFile("t.js", 100)
	p := f.Pos(41)
	assert.False(t, p.Unknown())
	assert.True(t, p.IsValid())
	assert.True(t, NoPos.Unknown())
	assert.False(t, NoPos.IsValid())
}

func TestFileLineCol(t *testing.T) {
	src := "var a = 1;\nvar b = 2;\nvar c = 3;"
	f := NewFile("t.js", len(src))
	for i, b := range src {
		if b == '\n' {
			f.AddLine(i + 1)
		}
	}

	p := f.Pos(0)
	pos := f.Position(p)
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 1, pos.Column)

	p = f.Pos(11) // start of second line
	pos = f.Position(p)
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 1, pos.Column)
}

func TestLookupKeyword(t *testing.T) {
	assert.Equal(t, FUNCTION, LookupKeyword("function"))
	assert.Equal(t, IDENT, LookupKeyword("functionX"))
	assert.True(t, IsFutureReserved(LookupKeyword("class")))
	assert.False(t, IsFutureReserved(LookupKeyword("function")))
}

func TestTokenGoString(t *testing.T) {
	assert.Equal(t, "'+'", PLUS.GoString())
	assert.Equal(t, "identifier", IDENT.GoString())
}
