package builtins

import (
	"strconv"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// wireJSON installs a JSON object with stringify/parse. JSON was not part
// of ES3 proper but ships in every production engine descended from it and
// the domain stack calls for exercising the object/array machinery end to
// end, so it is included as a supplemented built-in (SPEC_FULL's "built-in
// wiring" section names JSON explicitly). Hand-rolled rather than grounded
// on a pack dependency: no example repo ships a JS-value-shaped encoder,
// and Go's encoding/json only round-trips Go structs/maps, not a live
// Object graph with getters and a prototype chain.
func wireJSON(th *machine.Thread, protoObject *machine.Object) *machine.Object {
	j := machine.NewObject(protoObject)
	j.Class = machine.ClassJSON
	j.DefineDataProperty(th, "stringify", th.NewNativeFunction("stringify", 3, jsonStringify), true, false, true)
	j.DefineDataProperty(th, "parse", th.NewNativeFunction("parse", 2, jsonParse), true, false, true)
	return j
}

func jsonStringify(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	var b strings.Builder
	ok, err := jsonEncode(th, &b, args.At(0), make(map[*machine.Object]bool))
	if err != nil {
		return nil, err
	}
	if !ok {
		return machine.UndefinedValue, nil
	}
	return machine.String(b.String()), nil
}

// jsonEncode writes v's JSON representation to b, returning false (with no
// write) for a value JSON.stringify drops entirely (undefined, a
// function) at the top level, matching ES3-successor JSON.stringify's
// contract closely enough for the scenarios this engine targets.
func jsonEncode(th *machine.Thread, b *strings.Builder, v machine.Value, seen map[*machine.Object]bool) (bool, error) {
	switch val := v.(type) {
	case nil, machine.Undefined:
		return false, nil
	case machine.Null:
		b.WriteString("null")
		return true, nil
	case machine.Bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return true, nil
	case machine.Int:
		b.WriteString(val.String())
		return true, nil
	case machine.Float:
		b.WriteString(machine.FormatRadix(float64(val), 10))
		return true, nil
	case machine.String:
		b.WriteString(strconv.Quote(string(val)))
		return true, nil
	case *machine.Object:
		if val.Func != nil {
			return false, nil
		}
		if seen[val] {
			return false, th.TypeError("Converting circular structure to JSON")
		}
		seen[val] = true
		defer delete(seen, val)

		if val.Class == machine.ClassArray {
			n, err := arrayLen(th, val)
			if err != nil {
				return false, err
			}
			b.WriteByte('[')
			for i := uint32(0); i < n; i++ {
				if i > 0 {
					b.WriteByte(',')
				}
				ev, err := val.GetElement(th, i)
				if err != nil {
					return false, err
				}
				ok, err := jsonEncode(th, b, ev, seen)
				if err != nil {
					return false, err
				}
				if !ok {
					b.WriteString("null")
				}
			}
			b.WriteByte(']')
			return true, nil
		}

		b.WriteByte('{')
		first := true
		for _, k := range val.OwnEnumerableKeys(th) {
			pv, err := val.Get(th, k)
			if err != nil {
				return false, err
			}
			var tmp strings.Builder
			ok, err := jsonEncode(th, &tmp, pv, seen)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			b.WriteString(tmp.String())
		}
		b.WriteByte('}')
		return true, nil
	default:
		return false, nil
	}
}

// jsonParse is a recursive-descent JSON parser producing Object/Array
// values in the same shape object.go and array.go expect, avoiding
// encoding/json entirely since its decode target is Go values, not
// machine.Value.
func jsonParse(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	s, err := machine.ToString(th, args.At(0))
	if err != nil {
		return nil, err
	}
	p := &jsonParser{src: s, th: th}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, th.SyntaxErrorAt("unexpected trailing characters in JSON")
	}
	return v, nil
}

type jsonParser struct {
	src string
	pos int
	th  *machine.Thread
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) fail(msg string) error {
	return p.th.SyntaxErrorAt("JSON.parse: " + msg)
}

func (p *jsonParser) parseValue() (machine.Value, error) {
	if p.pos >= len(p.src) {
		return nil, p.fail("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return machine.String(s), nil
	case c == 't':
		return p.parseLiteral("true", machine.BoolValue(true))
	case c == 'f':
		return p.parseLiteral("false", machine.BoolValue(false))
	case c == 'n':
		return p.parseLiteral("null", machine.NullValue)
	default:
		return p.parseNumber()
	}
}

func (p *jsonParser) parseLiteral(lit string, v machine.Value) (machine.Value, error) {
	if p.pos+len(lit) > len(p.src) || p.src[p.pos:p.pos+len(lit)] != lit {
		return nil, p.fail("invalid literal")
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber() (machine.Value, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.ContainsRune("-+.eE0123456789", rune(p.src[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return nil, p.fail("invalid number")
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, p.fail("invalid number")
	}
	return numberValue(f), nil
}

func (p *jsonParser) parseString() (string, error) {
	if p.src[p.pos] != '"' {
		return "", p.fail("expected string")
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", p.fail("invalid unicode escape")
				}
				n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", p.fail("invalid unicode escape")
				}
				b.WriteRune(rune(n))
				p.pos += 4
			default:
				return "", p.fail("invalid escape")
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.fail("unterminated string")
}

func (p *jsonParser) parseArray() (machine.Value, error) {
	p.pos++ // '['
	var elems []machine.Value
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return newArray(p.th, elems), nil
	}
	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.fail("unterminated array")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return newArray(p.th, elems), nil
		}
		return nil, p.fail("expected ',' or ']'")
	}
}

func (p *jsonParser) parseObject() (machine.Value, error) {
	p.pos++ // '{'
	o := machine.NewObject(p.th.ProtoObject())
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return o, nil
	}
	for {
		p.skipSpace()
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return nil, p.fail("expected ':'")
		}
		p.pos++
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		o.DefineDataProperty(p.th, key, v, true, true, true)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.fail("unterminated object")
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return o, nil
		}
		return nil, p.fail("expected ',' or '}'")
	}
}
