// Package token defines the lexical token kinds and token instances shared
// by the frontend lexer, the ast node set, and the compiler.
package token

// Kind identifies a lexical category. The ordering mirrors the original
// TOKENS_LIST macro: structural tokens first, then keywords, then
// punctuation, then operators, grouped roughly by precedence family.
type Kind uint8

const (
	Comment Kind = iota
	OperatorOrPunctuation
	Identifier
	String
	Number
	Newline
	Space
	EOF

	If
	Else
	For
	While
	Loop
	Class
	Fn
	Op
	Let
	Const
	Return
	Continue
	Break

	LeftPar
	RightPar
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Dot
	Comma
	Colon
	Semicolon

	Assign
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignRemainder
	Mul
	Div
	Add
	Sub
	Remainder
	AddAdd
	SubSub

	TheNull
	TheTrue
	TheFalse

	BitOr
	BitXor
	BitAnd
	Tilde
	LeftShift
	RightShift
	And
	Or
	Xor
	Not
	Equals
	NotEquals
	Greater
	GreaterEquals
	Less
	LessEquals

	Invalid
)

// names holds the literal spelling for each Kind that has a fixed
// spelling, e.g. "while" or "<<"; Kind values produced by scanning rather
// than a fixed keyword/punctuation (Identifier, Number, String, ...) have
// an empty entry here and carry their text in Instance.Text instead.
var names = map[Kind]string{
	If:   "if",
	Else: "else", For: "for", While: "while", Loop: "loop",
	Class: "class", Fn: "fn", Op: "op", Let: "let", Const: "const",
	Return: "return", Continue: "continue", Break: "break",

	LeftPar: "(", RightPar: ")", LeftBrace: "{", RightBrace: "}",
	LeftBracket: "[", RightBracket: "]", Dot: ".", Comma: ",",
	Colon: ":", Semicolon: ";",

	Assign: "=", AssignAdd: "+=", AssignSub: "-=", AssignMul: "*=",
	AssignDiv: "/=", AssignRemainder: "%=", Mul: "*", Div: "/",
	Add: "+", Sub: "-", Remainder: "%", AddAdd: "++", SubSub: "--",

	TheNull: "null", TheTrue: "true", TheFalse: "false",

	BitOr: "|", BitXor: "^", BitAnd: "&", Tilde: "~",
	LeftShift: "<<", RightShift: ">>", And: "and", Or: "or", Xor: "xor",
	Not: "not", Equals: "==", NotEquals: "!=", Greater: ">",
	GreaterEquals: ">=", Less: "<", LessEquals: "<=",
}

// Text returns the fixed spelling for k, or "" if k has no fixed spelling
// (Identifier, String, Number and the other scanned-text kinds).
func (k Kind) Text() string { return names[k] }

// textToKind is the reverse of names, built once from it so the two tables
// can never drift apart.
var textToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(names))
	for k, s := range names {
		m[s] = k
	}
	return m
}()

// Lookup resolves the fixed spelling of a keyword or punctuation token back
// to its Kind, mirroring TokenUtils::GetTokenByText: a scanner uses it to
// reclassify a raw identifier-shaped or punctuation-shaped match (e.g.
// "while", "+=") as the specific keyword/operator Kind it spells.
func Lookup(text string) (Kind, bool) {
	k, ok := textToKind[text]
	return k, ok
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	switch k {
	case Comment:
		return "COMMENT"
	case OperatorOrPunctuation:
		return "OPERATOR_OR_PUNCTUATION"
	case Identifier:
		return "IDENTIFIER"
	case String:
		return "STRING"
	case Number:
		return "NUMBER"
	case Newline:
		return "NEWLINE"
	case Space:
		return "SPACE"
	case EOF:
		return "EOF"
	default:
		return "INVALID"
	}
}

// Instance is one scanned token: its kind, source span, and line/column
// for diagnostics. Text carries the raw source text for kinds whose
// spelling isn't fixed (Identifier, String, Number).
type Instance struct {
	Kind   Kind
	Pos    int32
	Length int32
	Row    int32
	Column int32
	Text   string
}
