package regexp

// runeRange is an inclusive [lo, hi] range of code points, the matching
// unit of a bracket expression (spec §4.K character classes) and of the
// \d \s \w shorthand escapes once expanded.
type runeRange struct {
	lo, hi rune
}

func (r runeRange) contains(c rune) bool { return c >= r.lo && c <= r.hi }

var digitRanges = []runeRange{{'0', '9'}}

var spaceRanges = []runeRange{
	{'\t', '\t'}, {'\n', '\n'}, {'\v', '\v'}, {'\f', '\f'}, {'\r', '\r'}, {' ', ' '},
	{0x00A0, 0x00A0}, {0xFEFF, 0xFEFF},
}

var wordRanges = []runeRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}

// class is a parsed bracket expression (or a shorthand escape treated as a
// one-off class): negate flips whether membership in ranges is a match.
type class struct {
	negate bool
	ranges []runeRange
}

func (c *class) matches(r rune, ignoreCase bool) bool {
	in := rangesContain(c.ranges, r)
	if !in && ignoreCase {
		if lo := foldRune(r); lo != r {
			in = rangesContain(c.ranges, lo)
		}
		if !in {
			if up := unfoldRune(r); up != r {
				in = rangesContain(c.ranges, up)
			}
		}
	}
	if c.negate {
		return !in
	}
	return in
}

func rangesContain(ranges []runeRange, r rune) bool {
	for _, rr := range ranges {
		if rr.contains(r) {
			return true
		}
	}
	return false
}

// foldRune/unfoldRune give the simple ASCII + Latin-1 case counterpart used
// by ES3's IgnoreCase matching (spec 15.10.2.8: canonicalize via
// toUppercase unless that maps outside the basic single-rune case, which
// covers the class of inputs a teardown-scale interpreter targets without
// pulling in a full Unicode case-folding table).
func foldRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	if r >= 0xC0 && r <= 0xDE && r != 0xD7 {
		return r + 0x20
	}
	return r
}

func unfoldRune(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	if r >= 0xE0 && r <= 0xFE && r != 0xF7 {
		return r - 0x20
	}
	return r
}
