package frontend

import (
	"fmt"

	"github.com/sharpyteam/nlang/token"
)

// Scanner walks a Lex result, skipping whitespace/comment/newline
// tokens for the parser while still letting IsEOL ask whether a newline
// separated the last two meaningful tokens. Grounded on Scanner/BookMark
// (parser/include/parser/scanner.hpp, parser/src/scanner.cpp): the C++
// side lazily pulls from a TokenStream through a StreamCache so it can
// both look behind (IsEOL's raw-token scan) and look ahead (lookahead/
// bookmarks) by index; this port just lexes eagerly into a slice up front,
// since nlang source is always one in-memory string, not a stream worth
// caching incrementally.
type Scanner struct {
	tokens []token.Instance
	pos    int
}

// NewScanner lexes src and returns a Scanner positioned at its start.
func NewScanner(src string) *Scanner {
	return &Scanner{tokens: Lex(src)}
}

var skippable = map[token.Kind]bool{
	token.Newline: true,
	token.Comment: true,
	token.Space:   true,
}

// BookMark is a saved scan position, returned by Mark and restored with
// Apply.
type BookMark struct {
	pos int
}

// Mark saves the current position so the caller can rewind to it later,
// mirroring Scanner::Mark/BookMark -- used by the parser wherever it must
// try a production and back out (e.g. distinguishing a parenthesized
// expression from a still-unconsumed left paren).
func (s *Scanner) Mark() BookMark { return BookMark{pos: s.pos} }

// Apply rewinds the scanner to the marked position.
func (s *Scanner) Apply(m BookMark) { s.pos = m.pos }

// nextRawIndex returns the index of the first token at or after from that
// is not Space/Comment/Newline.
func (s *Scanner) nextRawIndex(from int) int {
	i := from
	for i < len(s.tokens)-1 && skippable[s.tokens[i].Kind] {
		i++
	}
	return i
}

// NextToken consumes and returns the next non-skippable token.
func (s *Scanner) NextToken() token.Instance {
	i := s.nextRawIndex(s.pos)
	tok := s.tokens[i]
	s.pos = i + 1
	return tok
}

// NextTokenLookahead returns the next non-skippable token without
// consuming it.
func (s *Scanner) NextTokenLookahead() token.Instance {
	m := s.Mark()
	tok := s.NextToken()
	s.Apply(m)
	return tok
}

// NextTokenAssert consumes the next token, requiring it to have kind k. On
// mismatch the scanner is rewound (so the caller's own error recovery, if
// any, sees the unexpected token still pending) and an error is returned
// instead of the reference's throw.
func (s *Scanner) NextTokenAssert(k token.Kind) (token.Instance, error) {
	m := s.Mark()
	tok := s.NextToken()
	if tok.Kind != k {
		s.Apply(m)
		return token.Instance{}, fmt.Errorf("frontend: expected %s at %d:%d, got %s", k, tok.Row, tok.Column, tok.Kind)
	}
	return tok, nil
}

// IsEOF reports whether the next non-skippable token is EOF.
func (s *Scanner) IsEOF() bool {
	return s.NextTokenLookahead().Kind == token.EOF
}

// IsEOL reports whether a newline lies between the current position and
// the next non-skippable token -- used to decide whether `return`/`break`
// carry a trailing expression, and whether a binary operator may start on
// the following line.
func (s *Scanner) IsEOL() bool {
	start := s.pos
	tok := s.NextToken()
	end := s.pos
	s.pos = start
	if tok.Kind == token.EOF {
		return true
	}
	for i := start; i < end; i++ {
		if s.tokens[i].Kind == token.Newline {
			return true
		}
	}
	return false
}
