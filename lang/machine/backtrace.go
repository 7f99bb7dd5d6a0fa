package machine

import (
	"fmt"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// FormatError renders an error returned by EvalSource/RunModule in the
// engine's top-level diagnostic format: a "type text: message" header
// (type is the error's canonical name, text a best-guess source span for
// the faulting point), the offending source line, and a caret-and-tilde
// marker under that span. A non-throwError (an internal/host failure) is
// rendered as its bare Go error text, since it carries no script position.
func (th *Thread) FormatError(err error) string {
	v, ok := AsThrown(err)
	if !ok {
		return err.Error()
	}

	typ, msg := errorNameAndMessage(th, v)
	frames := ThrownFrames(err)
	if len(frames) == 0 {
		return fmt.Sprintf("%s: %s", typ, msg)
	}

	b := frames[0].Position()
	line, col, lineText := th.sourceLineAt(b.Pos)
	if lineText == "" {
		return fmt.Sprintf("%s %s: %s", typ, b.Name, msg)
	}

	span := strings.TrimRight(lineText[col-1:], " \t\r")
	if span == "" {
		span = strings.TrimSpace(lineText)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%s %s: %s\n", typ, span, msg)
	prefix := fmt.Sprintf("%d: ", line)
	out.WriteString(prefix)
	out.WriteString(lineText)
	out.WriteByte('\n')
	out.WriteString(strings.Repeat(" ", len(prefix)+col-1))
	out.WriteByte('^')
	if n := len(span) - 1; n > 0 {
		out.WriteString(strings.Repeat("~", n))
	}
	return out.String()
}

// FormatBacktrace renders every frame in bt, innermost first, as one "at
// name (line:col)" line per frame — a supplementary, more detailed
// companion to FormatError for embedders that want the full call stack
// rather than just the faulting frame.
func (th *Thread) FormatBacktrace(frames []*Frame) string {
	if len(frames) == 0 {
		return ""
	}
	var out strings.Builder
	for _, fr := range frames {
		b := fr.Position()
		line, col, _ := th.sourceLineAt(b.Pos)
		name := b.Name
		if name == "" {
			name = "<anonymous>"
		}
		if line == 0 {
			fmt.Fprintf(&out, "\tat %s\n", name)
			continue
		}
		fmt.Fprintf(&out, "\tat %s (%d:%d)\n", name, line, col)
	}
	return out.String()
}

func errorNameAndMessage(th *Thread, v Value) (name, msg string) {
	o, ok := v.(*Object)
	if !ok || o.Class != ClassError {
		return "Error", v.String()
	}
	name = "Error"
	if nv, err := o.Get(th, "name"); err == nil {
		if s, err := ToString(th, nv); err == nil && s != "" {
			name = s
		}
	}
	if mv, err := o.Get(th, "message"); err == nil {
		if s, err := ToString(th, mv); err == nil {
			msg = s
		}
	}
	return name, msg
}

// sourceLineAt resolves pos (a byte offset into the most recently eval'd
// source, per EvalSource's bookkeeping) to its 1-based line/column and the
// full text of that line. Returns a zero line and empty text when no
// source is on record or pos falls outside it — the caller degrades to a
// position-free diagnostic in that case.
func (th *Thread) sourceLineAt(pos token.Pos) (line, col int, text string) {
	src := th.lastErrorText
	if src == "" || !pos.IsValid() {
		return 0, 0, ""
	}
	offset := int(pos) - 1
	if offset < 0 || offset > len(src) {
		return 0, 0, ""
	}

	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEnd := strings.IndexByte(src[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += offset
	}

	line = strings.Count(src[:offset], "\n") + 1
	col = offset - lineStart + 1
	text = src[lineStart:lineEnd]
	return line, col, text
}
