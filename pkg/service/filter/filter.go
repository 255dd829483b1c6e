// Package filter implements the search filter expression language used by
// prompt and version search.
//
// Grammar:
//
//	expr   = clause { "AND" clause }
//	clause = field op value
//	field  = "name" | "description" | "tag." key
//	op     = "=" | "!=" | "LIKE" | "ILIKE"
//	value  = single-quoted string, "''" escapes a quote
//
// LIKE matches with "%" as a multi-character wildcard; ILIKE is the
// case-insensitive form. Keywords and field names are case-insensitive.
package filter

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-kurita/promptreg/pkg/domain/types/apperr"
)

// Target is the attribute view a predicate evaluates against. For prompt
// search Name is the prompt name; for version search it is the version
// number string.
type Target struct {
	Name        string
	Description string
	Tags        map[string]string
}

// Predicate reports whether a target matches a parsed filter expression
type Predicate func(Target) bool

type clause struct {
	field   string // "name", "description", or "" for tag
	tagKey  string
	op      string
	value   string
	pattern *regexp.Regexp // compiled LIKE/ILIKE pattern
}

// Parse compiles a filter expression into a predicate. An empty expression
// matches everything.
func Parse(expr string) (Predicate, error) {
	if strings.TrimSpace(expr) == "" {
		return func(Target) bool { return true }, nil
	}

	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	clauses, err := parseClauses(toks, expr)
	if err != nil {
		return nil, err
	}

	return func(t Target) bool {
		for _, c := range clauses {
			if !c.match(t) {
				return false
			}
		}
		return true
	}, nil
}

func (c *clause) match(t Target) bool {
	var actual string
	switch c.field {
	case "name":
		actual = t.Name
	case "description":
		actual = t.Description
	default:
		v, ok := t.Tags[c.tagKey]
		if !ok {
			// Missing tags never match, not even "!="
			return false
		}
		actual = v
	}

	switch c.op {
	case "=":
		return actual == c.value
	case "!=":
		return actual != c.value
	default: // LIKE / ILIKE
		return c.pattern.MatchString(actual)
	}
}

type token struct {
	kind string // "ident", "op", "value"
	text string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		ch := expr[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n':
			i++
		case ch == '=':
			toks = append(toks, token{kind: "op", text: "=", pos: i})
			i++
		case ch == '!':
			if i+1 >= len(expr) || expr[i+1] != '=' {
				return nil, syntaxError(expr, i, "expected '=' after '!'")
			}
			toks = append(toks, token{kind: "op", text: "!=", pos: i})
			i += 2
		case ch == '\'':
			val, next, err := readQuoted(expr, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: "value", text: val, pos: i})
			i = next
		case isIdentChar(ch):
			start := i
			for i < len(expr) && isIdentChar(expr[i]) {
				i++
			}
			toks = append(toks, token{kind: "ident", text: expr[start:i], pos: start})
		default:
			return nil, syntaxError(expr, i, "unexpected character")
		}
	}
	return toks, nil
}

// readQuoted reads a single-quoted string starting at pos; '' escapes a quote
func readQuoted(expr string, pos int) (string, int, error) {
	var sb strings.Builder
	i := pos + 1
	for i < len(expr) {
		if expr[i] == '\'' {
			if i+1 < len(expr) && expr[i+1] == '\'' {
				sb.WriteByte('\'')
				i += 2
				continue
			}
			return sb.String(), i + 1, nil
		}
		sb.WriteByte(expr[i])
		i++
	}
	return "", 0, syntaxError(expr, pos, "unterminated string value")
}

func isIdentChar(ch byte) bool {
	return ch == '_' || ch == '-' || ch == '.' || ch == '/' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func parseClauses(toks []token, expr string) ([]*clause, error) {
	var clauses []*clause
	i := 0
	for {
		c, next, err := parseClause(toks, i, expr)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
		i = next

		if i >= len(toks) {
			return clauses, nil
		}
		if toks[i].kind != "ident" || !strings.EqualFold(toks[i].text, "and") {
			return nil, syntaxError(expr, toks[i].pos, "expected AND")
		}
		i++
	}
}

func parseClause(toks []token, i int, expr string) (*clause, int, error) {
	if i >= len(toks) || toks[i].kind != "ident" {
		pos := len(expr)
		if i < len(toks) {
			pos = toks[i].pos
		}
		return nil, 0, syntaxError(expr, pos, "expected field name")
	}

	c := &clause{}
	field := toks[i].text
	switch {
	case strings.EqualFold(field, "name"):
		c.field = "name"
	case strings.EqualFold(field, "description"):
		c.field = "description"
	case len(field) > 4 && strings.EqualFold(field[:4], "tag."):
		c.tagKey = field[4:]
	default:
		return nil, 0, syntaxError(expr, toks[i].pos, "unknown field (expected name, description, or tag.<key>)")
	}
	i++

	if i >= len(toks) {
		return nil, 0, syntaxError(expr, len(expr), "expected operator")
	}
	switch {
	case toks[i].kind == "op":
		c.op = toks[i].text
	case toks[i].kind == "ident" && strings.EqualFold(toks[i].text, "like"):
		c.op = "LIKE"
	case toks[i].kind == "ident" && strings.EqualFold(toks[i].text, "ilike"):
		c.op = "ILIKE"
	default:
		return nil, 0, syntaxError(expr, toks[i].pos, "expected operator (=, !=, LIKE, ILIKE)")
	}
	i++

	if i >= len(toks) || toks[i].kind != "value" {
		pos := len(expr)
		if i < len(toks) {
			pos = toks[i].pos
		}
		return nil, 0, syntaxError(expr, pos, "expected quoted value")
	}
	c.value = toks[i].text
	i++

	if c.op == "LIKE" || c.op == "ILIKE" {
		c.pattern = compileLike(c.value, c.op == "ILIKE")
	}

	return c, i, nil
}

// compileLike translates a LIKE pattern into an anchored regexp where "%"
// matches any run of characters
func compileLike(pattern string, caseInsensitive bool) *regexp.Regexp {
	re := "(?s)^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), "%", ".*") + "$"
	if caseInsensitive {
		re = "(?i)" + re
	}
	return regexp.MustCompile(re)
}

func syntaxError(expr string, pos int, msg string) error {
	return goerr.New("invalid filter syntax: "+msg,
		goerr.T(apperr.ErrTagInvalidFilter),
		goerr.TV(apperr.FilterKey, expr),
		goerr.V("position", pos))
}
