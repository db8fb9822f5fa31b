package problems

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/scanner"
)

// Constructor rebuilds a problem from parsed arguments. Positional and
// keyword values are ints, float64s, strings, bools, nil, Tuples, Sets
// and Lists.
type Constructor func(args Args) (Problem, error)

// Registry maps problem names to constructors so that canonical strings
// can be turned back into problems.
type Registry struct {
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor. Names must be unique.
func (r *Registry) Register(name string, c Constructor) error {
	if _, ok := r.ctors[name]; ok {
		return fmt.Errorf("problem %q already registered", name)
	}
	r.ctors[name] = c
	return nil
}

// Names returns the registered problem names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Parse rebuilds the problem described by s, as produced by
// Problem.String.
func (r *Registry) Parse(s string) (Problem, error) {
	name, args, err := ParseCall(s)
	if err != nil {
		return nil, err
	}
	c, ok := r.ctors[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q", name)
	}
	return c(args)
}

// ParseCall splits Name(arg1, arg2, key=value) into the name and its
// arguments.
func ParseCall(s string) (string, Args, error) {
	p := newParser(s)
	name, args, err := p.call()
	if err == nil {
		err = p.err
	}
	if err != nil {
		return "", Args{}, fmt.Errorf("error parsing %q: %w", s, err)
	}
	return name, args, nil
}

type parser struct {
	s   scanner.Scanner
	tok rune
	err error
}

func newParser(src string) *parser {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings
	p.s.Error = func(_ *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("%s", msg)
		}
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", p.s.Position, fmt.Sprintf(format, args...))
}

func (p *parser) expect(r rune) error {
	if p.tok != r {
		return p.errorf("expected %s, found %q", scanner.TokenString(r), p.s.TokenText())
	}
	p.next()
	return nil
}

func (p *parser) call() (string, Args, error) {
	if p.tok != scanner.Ident {
		return "", Args{}, p.errorf("expected problem name, found %q", p.s.TokenText())
	}
	name := p.s.TokenText()
	p.next()
	if err := p.expect('('); err != nil {
		return "", Args{}, err
	}

	args := Args{Positional: []any{}, Keyword: map[string]any{}}
	for p.tok != ')' {
		if p.tok == scanner.Ident && !isLiteralIdent(p.s.TokenText()) {
			key := p.s.TokenText()
			p.next()
			if err := p.expect('='); err != nil {
				return "", Args{}, err
			}
			v, err := p.value()
			if err != nil {
				return "", Args{}, err
			}
			if _, ok := args.Keyword[key]; ok {
				return "", Args{}, p.errorf("keyword %s repeated", key)
			}
			args.Keyword[key] = v
		} else {
			if len(args.Keyword) > 0 {
				return "", Args{}, p.errorf("positional argument after keyword argument")
			}
			v, err := p.value()
			if err != nil {
				return "", Args{}, err
			}
			args.Positional = append(args.Positional, v)
		}
		if p.tok == ',' {
			p.next()
			continue
		}
		if p.tok != ')' {
			return "", Args{}, p.errorf("expected , or ), found %q", p.s.TokenText())
		}
	}
	p.next()
	if p.tok != scanner.EOF {
		return "", Args{}, p.errorf("unexpected %q after closing parenthesis", p.s.TokenText())
	}
	return name, args, nil
}

func isLiteralIdent(s string) bool {
	return s == "true" || s == "false" || s == "nil"
}

func (p *parser) value() (any, error) {
	text := p.s.TokenText()
	switch p.tok {
	case scanner.String:
		p.next()
		return strconv.Unquote(text)
	case scanner.Int:
		p.next()
		return strconv.Atoi(text)
	case scanner.Float:
		p.next()
		return strconv.ParseFloat(text, 64)
	case '-':
		p.next()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		switch n := v.(type) {
		case int:
			return -n, nil
		case float64:
			return -n, nil
		}
		return nil, p.errorf("cannot negate %s", formatValue(v))
	case scanner.Ident:
		p.next()
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "nil":
			return nil, nil
		}
		return nil, p.errorf("unexpected identifier %s", text)
	case '(':
		elems, err := p.sequence('(', ')')
		return Tuple(elems), err
	case '[':
		elems, err := p.sequence('[', ']')
		return List(elems), err
	case '{':
		elems, err := p.sequence('{', '}')
		if err != nil {
			return nil, err
		}
		return newSet(elems), nil
	}
	return nil, p.errorf("unexpected %q", text)
}

func (p *parser) sequence(open, closing rune) ([]any, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}
	elems := []any{}
	for p.tok != closing {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		if p.tok == ',' {
			p.next()
			continue
		}
		if p.tok != closing {
			return nil, p.errorf("expected , or %s, found %q", scanner.TokenString(closing), p.s.TokenText())
		}
	}
	p.next()
	return elems, nil
}

// newSet drops duplicate elements and sorts the rest by their canonical
// text.
func newSet(elems []any) Set {
	seen := make(map[string]any, len(elems))
	for _, e := range elems {
		seen[formatValue(e)] = e
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := make(Set, len(keys))
	for i, k := range keys {
		s[i] = seen[k]
	}
	return s
}
