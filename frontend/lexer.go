// Package frontend is a minimal lexer and recursive-descent parser that
// turns nlang source text into the ast package's node set. It exists only
// so cmd/nlang has something to feed package compiler; it is not part of
// the runtime core (value/heap/bytecode/scope/compiler/vm) and nothing in
// that core imports it.
//
// Both halves are close ports of the reference's TokenStream/Scanner
// (parser/include/parser/{token_stream,scanner}.hpp) and Parser
// (parser/include/parser/parser.hpp): same regex-ordered token table, same
// skip-whitespace/comment/newline scanning contract, same recursive-descent
// precedence ladder.
package frontend

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sharpyteam/nlang/token"
)

// tokenRegex pairs a pattern with the Kind it produces when matched at the
// current scan position. Patterns are tried in order and the first match
// wins, exactly the ordering TokenStream's constructor builds regex_tokens
// in: whitespace and comments before punctuation, punctuation and
// identifiers before string/number, newline last before the catch-all.
//
// Go's regexp (RE2) replaces the reference's ICU regex engine; no pack
// example imports a third-party regex library, and RE2's linear-time
// matching is a strict improvement over backtracking for a scanner that
// runs once per character of source.
type tokenRegex struct {
	re   *regexp.Regexp
	kind token.Kind
}

var tokenRegexes = []tokenRegex{
	{regexp.MustCompile(`^[ \t\r]+`), token.Space},
	{regexp.MustCompile(`^//[^\n]*`), token.Comment},
	{regexp.MustCompile(`(?s)^/\*.*?\*/`), token.Comment},
	{regexp.MustCompile(`^(\+\+|--|\+=|-=|\*=|/=|%=|==|!=|>=|<=|<<|>>|[(){}\[\];:,.=*/+\-!><~&|^])`), token.OperatorOrPunctuation},
	{regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`), token.Identifier},
	{regexp.MustCompile(`^"[^"\\]*(?:\\.[^"\\]*)*"`), token.String},
	{regexp.MustCompile(`^'[^'\\]*(?:\\.[^'\\]*)*'`), token.String},
	{regexp.MustCompile(`^[0-9]+(\.[0-9]+)?\b`), token.Number},
	{regexp.MustCompile(`^\n`), token.Newline},
	{regexp.MustCompile(`^.`), token.Invalid},
}

// Lex scans src in full and returns every token, including the
// Space/Comment/Newline tokens a parser skips over -- Scanner.IsEOL needs
// to see those to tell whether a newline separated two tokens it
// otherwise treats as adjacent.
func Lex(src string) []token.Instance {
	var out []token.Instance
	pos, row, col := 0, int32(1), int32(1)
	for pos < len(src) {
		rest := src[pos:]
		var (
			matched  string
			kind     token.Kind
			matchedK bool
		)
		for _, tr := range tokenRegexes {
			if loc := tr.re.FindStringIndex(rest); loc != nil && loc[0] == 0 {
				matched = rest[:loc[1]]
				kind = tr.kind
				matchedK = true
				break
			}
		}
		if !matchedK {
			// The catch-all `^.` pattern always matches a non-empty
			// remainder, so this is unreachable; kept as a defensive
			// bound rather than an infinite loop if that ever changes.
			break
		}

		text := matched
		actual := kind
		if kind == token.OperatorOrPunctuation || kind == token.Identifier {
			if k, ok := token.Lookup(text); ok {
				actual = k
			}
		}
		if actual == token.String {
			text = text[1 : len(text)-1]
		}

		startRow, startCol := row, col
		for _, r := range matched {
			col++
			if r == '\n' {
				row++
				col = 1
			}
		}

		out = append(out, token.Instance{
			Kind:   actual,
			Pos:    int32(pos),
			Length: int32(len(matched)),
			Row:    startRow,
			Column: startCol,
			Text:   text,
		})
		pos += len(matched)
	}
	out = append(out, token.Instance{Kind: token.EOF, Pos: int32(pos), Row: row, Column: col})
	return out
}

// parseNumber converts a Number token's text to float64. The scanner's
// regex only ever produces digits, at most one dot, so strconv.ParseFloat
// cannot fail on well-formed input; an error here means Lex and this
// disagree about what NUMBER matches.
func parseNumber(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("frontend: malformed number literal %q: %w", text, err)
	}
	return v, nil
}
