// Package regexp implements the pattern-matching engine (spec component K):
// an ES3-grammar pattern is compiled into a linear array of nodes, matched
// by depth-limited recursive backtracking. No pack example ships a
// backtracking regex engine and Go's standard regexp package is RE2-based,
// structurally unable to express backreferences or lookahead (both
// required here), so this package is hand-written rather than grounded on
// a corpus example; see DESIGN.md for the fuller justification.
package regexp

import "fmt"

// Flags is the set of ES3 regex flags recognized on a literal or passed to
// the RegExp constructor's second argument.
type Flags struct {
	Global     bool // g: stateful match via lastIndex
	IgnoreCase bool // i
	Multiline  bool // m: ^/$ also match at line boundaries
}

// ParseFlags validates a flag string, rejecting an unknown or duplicated
// letter the way a real engine's SyntaxError does.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, r := range s {
		switch r {
		case 'g':
			if f.Global {
				return f, fmt.Errorf("duplicate flag g")
			}
			f.Global = true
		case 'i':
			if f.IgnoreCase {
				return f, fmt.Errorf("duplicate flag i")
			}
			f.IgnoreCase = true
		case 'm':
			if f.Multiline {
				return f, fmt.Errorf("duplicate flag m")
			}
			f.Multiline = true
		default:
			return f, fmt.Errorf("invalid regular expression flag %q", string(r))
		}
	}
	return f, nil
}

// Regexp is a compiled pattern, ready to match against any input string.
type Regexp struct {
	prog    *prog
	Flags   Flags
	Source  string // original pattern text, for RegExp.prototype.source
	NGroups int    // capturing groups, not counting group 0 (the whole match)
}

// Compile parses pattern under flags into a matchable Regexp.
func Compile(pattern string, flags Flags) (*Regexp, error) {
	p, ngroups, err := parsePattern(pattern, flags)
	if err != nil {
		return nil, err
	}
	return &Regexp{prog: p, Flags: flags, Source: pattern, NGroups: ngroups}, nil
}

// MaxBacktrackDepth bounds recursive backtracking depth (spec §4.K's
// per-node depth cap, generalized here to one counter for the whole match
// rather than 255 per individual node, which is simpler to reason about in
// a continuation-passing matcher and serves the same purpose: pathological
// input cannot runaway the Go call stack). Exceeding it fails the match
// attempt at that starting position with ErrTooComplex, rather than a Go
// stack overflow.
const MaxBacktrackDepth = 1 << 16

// ErrTooComplex is returned by Exec/FindSubmatchIndex when a match attempt
// exceeds MaxBacktrackDepth.
var ErrTooComplex = fmt.Errorf("regexp: pattern too complex for input")

// FindSubmatchIndex finds the leftmost match starting at or after start,
// returning 2*(NGroups+1) indices: [m0s, m0e, g1s, g1e, ...], -1 for a
// group that did not participate. Returns nil, nil if there is no match at
// or after start.
func (re *Regexp) FindSubmatchIndex(input string, start int) ([]int, error) {
	rs := []rune(input)
	if start < 0 {
		start = 0
	}
	for pos := start; pos <= len(rs); pos++ {
		caps := make([]int, 2*(re.NGroups+1))
		for i := range caps {
			caps[i] = -1
		}
		m := &matcher{re: re, input: rs, caps: caps}
		ok, err := m.run(pos)
		if err != nil {
			return nil, err
		}
		if ok {
			return caps, nil
		}
		if re.prog.anchoredStart {
			// An unmultilined ^ anchor can only ever succeed at input
			// position 0; if this attempt (the only one that could reach
			// position 0, or none at all when start > 0) failed, no later
			// pos will do better.
			break
		}
	}
	return nil, nil
}

// MatchString reports whether re matches anywhere in input.
func (re *Regexp) MatchString(input string) (bool, error) {
	idx, err := re.FindSubmatchIndex(input, 0)
	return idx != nil, err
}

// RuneLen returns the number of code points in input, the unit
// FindSubmatchIndex's returned offsets are measured in; callers mapping
// back to a host string's own indexing (byte offsets for a Go string,
// UTF-16 code units for a strict ES3 host) convert using this and
// input's rune slice.
func RuneLen(input string) int { return len([]rune(input)) }

