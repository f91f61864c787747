package query

import (
	"regexp"
	"strings"
)

type Operator int

const (
	OpContains Operator = iota + 1
	OpEquals
	OpNotEquals
	OpGreaterThan
	OpLessThan
	OpGreaterOrEqual
	OpLessOrEqual
)

// operators ordered so that two-char symbols are matched first
var operators = []struct {
	symbol string
	op     Operator
}{
	{"!=", OpNotEquals},
	{">=", OpGreaterOrEqual},
	{"<=", OpLessOrEqual},
	{":", OpContains},
	{"=", OpEquals},
	{">", OpGreaterThan},
	{"<", OpLessThan},
}

func (op Operator) String() string {
	for _, o := range operators {
		if o.op == op {
			return o.symbol
		}
	}
	return "?"
}

type Combinator int

const (
	And Combinator = iota
	Or
)

func (c Combinator) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

const (
	andSep = ";"
	orSep  = "|"
)

var fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Term is a single `field<op>value` condition as written by the client, before the field
// is looked up and the value typed.
type Term struct {
	Field    string
	Operator Operator
	Value    string
}

// Expression is a parsed, unresolved filter expression.
type Expression struct {
	Combinator Combinator
	Terms      []Term
}

func (e Expression) IsEmpty() bool { return len(e.Terms) == 0 }

// ParseFilter parses `clause (';' clause)* | clause ('|' clause)*`.
// A blank input yields an empty Expression. Empty clauses (leading, trailing or repeated
// delimiters) are dropped. Mixing ';' and '|' is rejected.
func ParseFilter(raw string) (Expression, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Expression{}, nil
	}

	hasAnd := strings.Contains(raw, andSep)
	hasOr := strings.Contains(raw, orSep)
	if hasAnd && hasOr {
		return Expression{}, newError(FilterParam, "cannot mix %q and %q in the same filter", andSep, orSep)
	}

	expr := Expression{Combinator: And}
	sep := andSep
	if hasOr {
		expr.Combinator = Or
		sep = orSep
	}

	for _, part := range strings.Split(raw, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		term, err := parseTerm(part)
		if err != nil {
			return Expression{}, err
		}
		expr.Terms = append(expr.Terms, term)
	}
	return expr, nil
}

func parseTerm(s string) (Term, error) {
	idx := strings.IndexAny(s, ":=<>!")
	if idx < 0 {
		return Term{}, newError(FilterParam, "invalid filter clause %q: missing operator", s)
	}

	field := strings.TrimSpace(s[:idx])
	if !fieldNameRegex.MatchString(field) {
		return Term{}, newError(FilterParam, "invalid filter clause %q: invalid field name", s)
	}

	rest := s[idx:]
	var op Operator
	for _, o := range operators {
		if strings.HasPrefix(rest, o.symbol) {
			op = o.op
			rest = rest[len(o.symbol):]
			break
		}
	}
	if op == 0 {
		return Term{}, newError(FilterParam, "invalid filter clause %q: unknown operator", s)
	}

	value := strings.TrimSpace(rest)
	if value == "" {
		return Term{}, newError(FilterParam, "invalid filter clause %q: missing value", s)
	}
	return Term{Field: field, Operator: op, Value: value}, nil
}
