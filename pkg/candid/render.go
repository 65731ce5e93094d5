package candid

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultWidth is the line width used by the pretty printer of the command line tool.
const DefaultWidth = 80

// doc is a rendering of a value that can be printed on a single line or broken over lines.
// A doc without items and brackets is an atom.
type doc struct {
	prefix   string
	atom     string
	items    []doc
	open     string
	close    string
	sep      string
	padded   bool
	compound bool
}

func atom(s string) doc {
	return doc{atom: s}
}

func withPrefix(prefix string, d doc) doc {
	d.prefix = prefix + d.prefix
	return d
}

func block(prefix string, items []doc) doc {
	return doc{prefix: prefix, items: items, open: "{", close: "}", sep: ";", padded: true, compound: true}
}

func (d doc) flat() string {
	if !d.compound {
		return d.prefix + d.atom
	}
	var sb strings.Builder
	sb.WriteString(d.prefix)
	sb.WriteString(d.open)
	if len(d.items) == 0 {
		sb.WriteString(d.close)
		return sb.String()
	}
	if d.padded {
		sb.WriteByte(' ')
	}
	for i, it := range d.items {
		if i > 0 {
			sb.WriteString(d.sep)
			sb.WriteByte(' ')
		}
		sb.WriteString(it.flat())
	}
	if d.padded {
		sb.WriteByte(' ')
	}
	sb.WriteString(d.close)
	return sb.String()
}

// pretty writes the doc starting at the column indent. Items of a doc that doesn't fit
// the width go on separate lines indented by two spaces, each followed by the separator.
func (d doc) pretty(sb *strings.Builder, indent, width int) {
	f := d.flat()
	if !d.compound || len(d.items) == 0 || indent+utf8.RuneCountInString(f) <= width {
		sb.WriteString(f)
		return
	}
	sb.WriteString(d.prefix)
	sb.WriteString(d.open)
	sb.WriteByte('\n')
	pad := strings.Repeat(" ", indent+2)
	for _, it := range d.items {
		sb.WriteString(pad)
		it.pretty(sb, indent+2, width)
		sb.WriteString(d.sep)
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Repeat(" ", indent))
	sb.WriteString(d.close)
}

func renderFlat(v Value) string {
	return valueDoc(v, false).flat()
}

func (a Args) doc() doc {
	items := make([]doc, len(a))
	for i, v := range a {
		items[i] = valueDoc(v, false)
	}
	return doc{items: items, open: "(", close: ")", sep: ",", compound: true}
}

// String renders the arguments on a single line.
func (a Args) String() string {
	return a.doc().flat()
}

// Pretty renders the arguments breaking the forms longer than width over multiple lines.
func (a Args) Pretty(width int) string {
	var sb strings.Builder
	a.doc().pretty(&sb, 0, width)
	return sb.String()
}

// annotated renders a fixed width number with its type, in parentheses if nested under `opt`.
func annotated(s string, t Primitive, nested bool) doc {
	if nested {
		return atom("(" + s + " : " + t.String() + ")")
	}
	return atom(s + " : " + t.String())
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func valueDoc(v Value, underOpt bool) doc {
	switch x := v.(type) {
	case Null, None, Reserved:
		return atom("null")
	case Bool:
		return atom(strconv.FormatBool(bool(x)))
	case Number:
		return atom(string(x))
	case Nat:
		return atom(bigString(x.V))
	case Int:
		return atom(bigString(x.V))
	case Nat8:
		return annotated(strconv.FormatUint(uint64(x), 10), Nat8Type, underOpt)
	case Nat16:
		return annotated(strconv.FormatUint(uint64(x), 10), Nat16Type, underOpt)
	case Nat32:
		return annotated(strconv.FormatUint(uint64(x), 10), Nat32Type, underOpt)
	case Nat64:
		return annotated(strconv.FormatUint(uint64(x), 10), Nat64Type, underOpt)
	case Int8:
		return annotated(strconv.FormatInt(int64(x), 10), Int8Type, underOpt)
	case Int16:
		return annotated(strconv.FormatInt(int64(x), 10), Int16Type, underOpt)
	case Int32:
		return annotated(strconv.FormatInt(int64(x), 10), Int32Type, underOpt)
	case Int64:
		return annotated(strconv.FormatInt(int64(x), 10), Int64Type, underOpt)
	case Float32:
		return annotated(formatFloat(float64(x), 32), Float32Type, underOpt)
	case Float64:
		return atom(formatFloat(float64(x), 64))
	case Text:
		return atom(quoteText(string(x)))
	case Opt:
		return withPrefix("opt ", valueDoc(x.Value, true))
	case Vec:
		if b, ok := x.Bytes(); ok && len(b) > 0 {
			return atom("blob " + quoteBytes(b, true))
		}
		items := make([]doc, len(x))
		for i, e := range x {
			items[i] = valueDoc(e, false)
		}
		return block("vec ", items)
	case Record:
		return recordDoc(x)
	case Variant:
		if _, null := x.Field.Value.(Null); null {
			return block("variant ", []doc{atom(fieldLabel(x.Field))})
		}
		return block("variant ", []doc{withPrefix(fieldLabel(x.Field)+" = ", valueDoc(x.Field.Value, false))})
	case Principal:
		return atom("principal " + quoteText(principalToText(x)))
	case Service:
		return atom("service " + quoteText(principalToText(x.Principal)))
	case Func:
		return atom("func " + quoteText(principalToText(x.Principal)) + "." + quoteName(x.Method))
	default:
		return atom("<unknown>")
	}
}

func recordDoc(r Record) doc {
	tuple := len(r) > 0
	for i, f := range r {
		if f.Name != "" || f.ID != uint32(i) {
			tuple = false
			break
		}
	}
	items := make([]doc, len(r))
	for i, f := range r {
		if tuple {
			items[i] = valueDoc(f.Value, false)
			continue
		}
		items[i] = withPrefix(fieldLabel(f)+" = ", valueDoc(f.Value, false))
	}
	return block("record ", items)
}
