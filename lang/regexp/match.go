package regexp

// matcher holds the mutable state of one match attempt starting at a fixed
// position: the input (as runes, so indices are code-point offsets matching
// ES3's string indexing model closely enough for the BMP-scale inputs this
// engine targets), the capture slots being filled in, and a backtracking
// depth counter bounding runaway patterns.
type matcher struct {
	re    *Regexp
	input []rune
	caps  []int
	depth int
}

// run attempts to match re's whole pattern with the left edge fixed at
// pos, returning true and leaving m.caps populated on success.
func (m *matcher) run(pos int) (bool, error) {
	m.caps[0] = pos
	ok, err := m.matchNode(m.re.prog.root, pos, func(end int) bool {
		m.caps[1] = end
		return true
	})
	return ok, err
}

// matchNode attempts to match the node at index ni starting at pos, calling
// cont with the position just past the match for each way it could
// succeed; matchNode itself succeeds iff some call to cont returns true
// (continuation-passing backtracking: cont encodes "the rest of the
// pattern", so a quantifier or alternative that fails downstream can
// retry a different extent before giving up).
func (m *matcher) matchNode(ni int, pos int, cont func(int) bool) (bool, error) {
	m.depth++
	if m.depth > MaxBacktrackDepth {
		return false, ErrTooComplex
	}
	defer func() { m.depth-- }()

	n := &m.re.prog.nodes[ni]
	switch n.kind {
	case nLit:
		if pos >= len(m.input) {
			return false, nil
		}
		if m.runeEq(m.input[pos], n.lit) {
			return cont(pos + 1), nil
		}
		return false, nil

	case nAny:
		if pos >= len(m.input) || m.input[pos] == '\n' {
			return false, nil
		}
		return cont(pos + 1), nil

	case nClass:
		if pos >= len(m.input) {
			return false, nil
		}
		if n.cls.matches(m.input[pos], m.re.Flags.IgnoreCase) {
			return cont(pos + 1), nil
		}
		return false, nil

	case nStart:
		if pos == 0 {
			return cont(pos), nil
		}
		if m.re.Flags.Multiline && pos > 0 && m.input[pos-1] == '\n' {
			return cont(pos), nil
		}
		return false, nil

	case nEnd:
		if pos == len(m.input) {
			return cont(pos), nil
		}
		if m.re.Flags.Multiline && m.input[pos] == '\n' {
			return cont(pos), nil
		}
		return false, nil

	case nWordBoundary:
		before := pos > 0 && isWordRune(m.input[pos-1])
		after := pos < len(m.input) && isWordRune(m.input[pos])
		boundary := before != after
		if boundary != n.negate {
			return cont(pos), nil
		}
		return false, nil

	case nConcat:
		return m.matchSeq(n.kids, 0, pos, cont)

	case nAlt:
		for _, k := range n.kids {
			ok, err := m.matchNode(k, pos, cont)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil

	case nGroup:
		save0, save1 := -1, -1
		if n.groupNum > 0 {
			save0, save1 = m.caps[2*n.groupNum], m.caps[2*n.groupNum+1]
		}
		ok, err := m.matchNode(n.child, pos, func(end int) bool {
			if n.groupNum > 0 {
				m.caps[2*n.groupNum] = pos
				m.caps[2*n.groupNum+1] = end
			}
			if cont(end) {
				return true
			}
			if n.groupNum > 0 {
				m.caps[2*n.groupNum], m.caps[2*n.groupNum+1] = save0, save1
			}
			return false
		})
		if !ok && n.groupNum > 0 {
			m.caps[2*n.groupNum], m.caps[2*n.groupNum+1] = save0, save1
		}
		return ok, err

	case nBackref:
		return m.matchBackref(n.refNum, pos, cont)

	case nLookahead:
		matched, err := m.matchNode(n.child, pos, func(int) bool { return true })
		if err != nil {
			return false, err
		}
		if matched == n.negate {
			return false, nil
		}
		return cont(pos), nil

	case nRepeat:
		return m.matchRepeat(n, pos, 0, cont)
	}
	return false, nil
}

// matchSeq matches kids[i:] in order, threading each child's continuation
// into the next so the whole chain only succeeds once cont (the code past
// the end of the sequence) does.
func (m *matcher) matchSeq(kids []int, i int, pos int, cont func(int) bool) (bool, error) {
	if i == len(kids) {
		return cont(pos), nil
	}
	var innerErr error
	ok, err := m.matchNode(kids[i], pos, func(next int) bool {
		var r bool
		r, innerErr = m.matchSeq(kids, i+1, next, cont)
		return r
	})
	if err != nil {
		return false, err
	}
	if innerErr != nil {
		return false, innerErr
	}
	return ok, nil
}

// matchRepeat implements greedy/lazy {min,max} quantifiers by recursion:
// count tracks repetitions consumed so far. A greedy repeat always tries
// "one more" before falling back to cont; a lazy one tries cont first.
func (m *matcher) matchRepeat(n *node, pos int, count int, cont func(int) bool) (bool, error) {
	canStop := count >= n.min
	canMore := n.max < 0 || count < n.max

	tryMore := func() (bool, error) {
		if !canMore {
			return false, nil
		}
		var innerErr error
		ok, err := m.matchNode(n.child, pos, func(next int) bool {
			if next == pos && count >= n.min {
				// zero-width match inside a repeat: stop recursing to avoid
				// an infinite loop, treat as "no further progress possible".
				return false
			}
			var r bool
			r, innerErr = m.matchRepeat(n, next, count+1, cont)
			return r
		})
		if err != nil {
			return false, err
		}
		return ok, innerErr
	}
	tryStop := func() (bool, error) {
		if !canStop {
			return false, nil
		}
		return cont(pos), nil
	}

	if n.greedy {
		if ok, err := tryMore(); ok || err != nil {
			return ok, err
		}
		return tryStop()
	}
	if ok, err := tryStop(); ok || err != nil {
		return ok, err
	}
	return tryMore()
}

func (m *matcher) matchBackref(groupNum int, pos int, cont func(int) bool) (bool, error) {
	if 2*groupNum+1 >= len(m.caps) {
		return cont(pos), nil
	}
	s, e := m.caps[2*groupNum], m.caps[2*groupNum+1]
	if s < 0 || e < 0 {
		// An unparticipated group backreference always matches the empty
		// string, per the common (Annex B-compatible) reading ES3 engines use.
		return cont(pos), nil
	}
	n := e - s
	if pos+n > len(m.input) {
		return false, nil
	}
	for i := 0; i < n; i++ {
		if !m.runeEq(m.input[pos+i], m.input[s+i]) {
			return false, nil
		}
	}
	return cont(pos + n), nil
}

func (m *matcher) runeEq(a, b rune) bool {
	if a == b {
		return true
	}
	if !m.re.Flags.IgnoreCase {
		return false
	}
	return foldRune(a) == foldRune(b)
}

func isWordRune(r rune) bool {
	return rangesContain(wordRanges, r)
}
