// Package predicate parses the textual predicate wire format into a generic
// expression tree. The parser knows nothing about constraints; the constraint
// package adapts the tree into validated rule nodes.
//
// Wire format: parentheses and braces are decoration, commas are separators,
// `label:` tokens are dropped. A composite keyword (and/or/xor/implies) is
// followed by its two sub-expressions; a leaf keyword is followed by its
// scalar arguments. Leaf boundaries are recognized purely by the next known
// keyword, so a leaf argument can never legally be a bare token equal to a
// keyword. That ambiguity is inherent to the grammar and deliberately kept.
package predicate

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is one node of the parsed tree. Composites fill Left/Right,
// leaves fill Args with int, float64 or string scalars.
type Expression struct {
	Op    string
	Args  []any
	Left  *Expression
	Right *Expression
}

func (e *Expression) IsComposite() bool {
	return compositeOps[e.Op]
}

var compositeOps = map[string]bool{
	"and":     true,
	"or":      true,
	"xor":     true,
	"implies": true,
}

var leafKeywords = map[string]bool{
	"age":             true,
	"location":        true,
	"time":            true,
	"monthday":        true,
	"weekday":         true,
	"season":          true,
	"holiday":         true,
	"price-basket":    true,
	"price-product":   true,
	"price-category":  true,
	"weight-basket":   true,
	"weight-product":  true,
	"weight-category": true,
	"amount-basket":   true,
	"amount-product":  true,
	"amount-category": true,
}

// IsKeyword reports whether tok names a leaf constraint or a composite
// operator.
func IsKeyword(tok string) bool {
	t := strings.ToLower(tok)
	return compositeOps[t] || leafKeywords[t]
}

// Error codes carried by ParseError.
const (
	CodeUnknownKeyword = "unknown_keyword"
	CodeMissingOperand = "missing_operand"
	CodeTrailingTokens = "trailing_tokens"
	CodeEmptyInput     = "empty_input"
	CodeBadTuple       = "bad_tuple"
)

type ParseError struct {
	Code  string
	Token string
	Pos   int
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Code)
	}
	return fmt.Sprintf("parse error at %d: %s (%q)", e.Pos, e.Code, e.Token)
}

// Tokenize splits a textual predicate into the flat token stream Parse
// consumes: parentheses, braces and commas stripped, `label:` tokens dropped.
func Tokenize(input string) []string {
	clean := strings.NewReplacer("(", " ", ")", " ", "{", " ", "}", " ", ",", " ").Replace(input)
	fields := strings.Fields(clean)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.HasSuffix(f, ":") {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// ParseString tokenizes and parses a textual predicate.
func ParseString(input string) (*Expression, error) {
	return Parse(Tokenize(input))
}

// Parse runs a single left-to-right scan over the token stream and returns
// the expression tree. The whole stream must be consumed; a leftover token
// at top level is an error.
func Parse(tokens []string) (*Expression, error) {
	if len(tokens) == 0 {
		return nil, &ParseError{Code: CodeEmptyInput}
	}
	expr, next, err := parseAt(tokens, 0)
	if err != nil {
		return nil, err
	}
	if next != len(tokens) {
		return nil, &ParseError{Code: CodeTrailingTokens, Token: tokens[next], Pos: next}
	}
	return expr, nil
}

// parseAt parses one expression starting at index i and returns the node and
// the cursor position just past it. A leaf accumulates argument tokens until
// the next known keyword or the end of input; the keyword is left for the
// caller to consume.
func parseAt(tokens []string, i int) (*Expression, int, error) {
	if i >= len(tokens) {
		return nil, i, &ParseError{Code: CodeMissingOperand, Pos: i}
	}
	tok := strings.ToLower(tokens[i])

	if compositeOps[tok] {
		left, j, err := parseAt(tokens, i+1)
		if err != nil {
			return nil, j, err
		}
		right, k, err := parseAt(tokens, j)
		if err != nil {
			return nil, k, err
		}
		return &Expression{Op: tok, Left: left, Right: right}, k, nil
	}

	if !leafKeywords[tok] {
		return nil, i, &ParseError{Code: CodeUnknownKeyword, Token: tokens[i], Pos: i}
	}

	var args []any
	j := i + 1
	for j < len(tokens) {
		if IsKeyword(tokens[j]) {
			break
		}
		args = append(args, coerce(tokens[j]))
		j++
	}
	return &Expression{Op: tok, Args: args}, j, nil
}

// coerce turns a token into int (pure digits), float64 (contains a dot) or
// leaves it a string.
func coerce(tok string) any {
	if strings.Contains(tok, ".") {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return f
		}
		return tok
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return n
	}
	return tok
}

// ParseTuple accepts the equivalent nested-tuple form: ("and", left, right)
// with sub-tuples as []any, or ("age", 18) for a leaf.
func ParseTuple(tuple []any) (*Expression, error) {
	if len(tuple) == 0 {
		return nil, &ParseError{Code: CodeEmptyInput}
	}
	op, ok := tuple[0].(string)
	if !ok {
		return nil, &ParseError{Code: CodeBadTuple, Token: fmt.Sprint(tuple[0])}
	}
	op = strings.ToLower(op)

	if compositeOps[op] {
		if len(tuple) != 3 {
			return nil, &ParseError{Code: CodeMissingOperand, Token: op}
		}
		left, err := subTuple(tuple[1])
		if err != nil {
			return nil, err
		}
		right, err := subTuple(tuple[2])
		if err != nil {
			return nil, err
		}
		return &Expression{Op: op, Left: left, Right: right}, nil
	}

	if !leafKeywords[op] {
		return nil, &ParseError{Code: CodeUnknownKeyword, Token: op}
	}
	args := make([]any, 0, len(tuple)-1)
	for _, a := range tuple[1:] {
		args = append(args, normalizeScalar(a))
	}
	return &Expression{Op: op, Args: args}, nil
}

func subTuple(v any) (*Expression, error) {
	t, ok := v.([]any)
	if !ok {
		return nil, &ParseError{Code: CodeBadTuple, Token: fmt.Sprint(v)}
	}
	return ParseTuple(t)
}

// normalizeScalar maps json-decoded numbers onto the parser's scalar types:
// whole floats become ints, everything else passes through.
func normalizeScalar(v any) any {
	if f, ok := v.(float64); ok && f == float64(int(f)) {
		return int(f)
	}
	return v
}
