package regexp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/lang/regexp"
)

func compile(t *testing.T, pattern, flags string) *regexp.Regexp {
	t.Helper()
	f, err := regexp.ParseFlags(flags)
	require.NoError(t, err)
	re, err := regexp.Compile(pattern, f)
	require.NoError(t, err)
	return re
}

func TestParseFlagsRejectsUnknownAndDuplicate(t *testing.T) {
	_, err := regexp.ParseFlags("x")
	assert.Error(t, err)

	_, err = regexp.ParseFlags("gg")
	assert.Error(t, err)

	f, err := regexp.ParseFlags("gim")
	require.NoError(t, err)
	assert.True(t, f.Global)
	assert.True(t, f.IgnoreCase)
	assert.True(t, f.Multiline)
}

func TestLiteralAndClassMatch(t *testing.T) {
	re := compile(t, "a[bc]+d", "")
	ok, err := re.MatchString("xxabbcd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = re.MatchString("abd")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = re.MatchString("axd")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuantifiers(t *testing.T) {
	re := compile(t, "ab*c", "")
	for _, s := range []string{"ac", "abc", "abbbbc"} {
		ok, err := re.MatchString(s)
		require.NoError(t, err)
		assert.Truef(t, ok, "expected match for %q", s)
	}
	ok, err := re.MatchString("adc")
	require.NoError(t, err)
	assert.False(t, ok)

	re = compile(t, "a{2,3}", "")
	idx, err := re.FindSubmatchIndex("aaaa", 0)
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, 3, idx[1]-idx[0])
}

func TestCaptureGroups(t *testing.T) {
	re := compile(t, "(\\w+)@(\\w+)", "")
	idx, err := re.FindSubmatchIndex("contact bob@example now", 0)
	require.NoError(t, err)
	require.NotNil(t, idx)

	rs := []rune("contact bob@example now")
	full := string(rs[idx[0]:idx[1]])
	user := string(rs[idx[2]:idx[3]])
	host := string(rs[idx[4]:idx[5]])
	assert.Equal(t, "bob@example", full)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "example", host)
}

func TestUnparticipatingGroupIsMinusOne(t *testing.T) {
	re := compile(t, "(a)|(b)", "")
	idx, err := re.FindSubmatchIndex("b", 0)
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, -1, idx[2])
	assert.Equal(t, -1, idx[3])
	assert.NotEqual(t, -1, idx[4])
}

func TestBackreference(t *testing.T) {
	re := compile(t, "(\\w+) \\1", "")
	ok, err := re.MatchString("echo echo")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = re.MatchString("echo foxtrot")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackreferenceToUnparticipatedGroupMatchesEmpty(t *testing.T) {
	re := compile(t, "(a)?\\1b", "")
	ok, err := re.MatchString("b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLookahead(t *testing.T) {
	re := compile(t, "foo(?=bar)", "")
	ok, err := re.MatchString("foobar")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = re.MatchString("foobaz")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNegativeLookahead(t *testing.T) {
	re := compile(t, "foo(?!bar)", "")
	ok, err := re.MatchString("foobaz")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = re.MatchString("foobar")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIgnoreCaseFlag(t *testing.T) {
	re := compile(t, "HELLO", "i")
	ok, err := re.MatchString("say hello there")
	require.NoError(t, err)
	assert.True(t, ok)

	re = compile(t, "HELLO", "")
	ok, err = re.MatchString("say hello there")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMultilineFlagAnchors(t *testing.T) {
	re := compile(t, "^bar", "m")
	ok, err := re.MatchString("foo\nbar")
	require.NoError(t, err)
	assert.True(t, ok)

	re = compile(t, "^bar", "")
	ok, err = re.MatchString("foo\nbar")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGlobalFlagFindsEveryMatch(t *testing.T) {
	re := compile(t, "\\d+", "g")
	var matches []string
	rs := []rune("a1 b22 c333")
	pos := 0
	for {
		idx, err := re.FindSubmatchIndex(string(rs), pos)
		require.NoError(t, err)
		if idx == nil {
			break
		}
		matches = append(matches, string(rs[idx[0]:idx[1]]))
		pos = idx[1]
	}
	assert.Equal(t, []string{"1", "22", "333"}, matches)
}

func TestAnchoredStartStopsEarly(t *testing.T) {
	re := compile(t, "^abc", "")
	idx, err := re.FindSubmatchIndex("xabc", 0)
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestNoMatchReturnsNilNotError(t *testing.T) {
	re := compile(t, "zzz", "")
	idx, err := re.FindSubmatchIndex("abc", 0)
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestRuneLenCountsCodePointsNotBytes(t *testing.T) {
	assert.Equal(t, 1, regexp.RuneLen("é"))
	assert.Equal(t, 3, regexp.RuneLen("abc"))
}
