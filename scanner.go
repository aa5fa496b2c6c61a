package der

import (
	"fmt"

	"github.com/cznic/mathutil"
)

type TokenKind int

const (
	EOF TokenKind = iota
	IDENTIFIER
	INTEGER
	FLOAT
	STRING
	CHAR
	BOOL
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	ASSIGN
	EQUALITY
	NOT_EQUAL
	LESS
	LESS_EQUAL
	GREATER
	GREATER_EQUAL
	AND
	OR
	NOT
	BIT_AND
	BIT_OR
	PIPE
	DOUBLE_QST
	LEFTPAREN
	RIGHTPAREN
	LEFTBRACE
	RIGHTBRACE
	LEFTBRACKET
	RIGHTBRACKET
	SEMICOLON
	COMMA
	COLON
	DOT
	RANGE

	// keywords
	DIR
	DALATON
	RJE3
	ILA
	AWLA
	JISM
	TI3DAD
	LKOLA
	JADID
	KANT
)

var tokenNames = map[TokenKind]string{
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	INTEGER:       "INTEGER",
	FLOAT:         "FLOAT",
	STRING:        "STRING",
	CHAR:          "CHAR",
	BOOL:          "BOOL",
	PLUS:          "+",
	MINUS:         "-",
	STAR:          "*",
	SLASH:         "/",
	PERCENT:       "%",
	ASSIGN:        "=",
	EQUALITY:      "==",
	NOT_EQUAL:     "!=",
	LESS:          "<",
	LESS_EQUAL:    "<=",
	GREATER:       ">",
	GREATER_EQUAL: ">=",
	AND:           "&&",
	OR:            "||",
	NOT:           "!",
	BIT_AND:       "&",
	BIT_OR:        "|",
	PIPE:          "|>",
	DOUBLE_QST:    "??",
	LEFTPAREN:     "(",
	RIGHTPAREN:    ")",
	LEFTBRACE:     "{",
	RIGHTBRACE:    "}",
	LEFTBRACKET:   "[",
	RIGHTBRACKET:  "]",
	SEMICOLON:     ";",
	COMMA:         ",",
	COLON:         ":",
	DOT:           ".",
	RANGE:         "...",
	DIR:           "dir",
	DALATON:       "dalaton",
	RJE3:          "rje3",
	ILA:           "ila",
	AWLA:          "awla",
	JISM:          "jism",
	TI3DAD:        "ti3dad",
	LKOLA:         "lkola",
	JADID:         "jadid",
	KANT:          "kant",
}

func (t TokenKind) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	panic("unreachable")
}

var keywords = map[string]TokenKind{
	"dir":     DIR,
	"dalaton": DALATON,
	"rje3":    RJE3,
	"ila":     ILA,
	"awla":    AWLA,
	"jism":    JISM,
	"ti3dad":  TI3DAD,
	"lkola":   LKOLA,
	"jadid":   JADID,
	"kant":    KANT,
	"sa7i7":   BOOL,
	"khata2":  BOOL,
}

type Pos struct {
	Filename string
	Line     int
	Column   int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

type Token struct {
	Pos
	Kind    TokenKind
	Content []byte
}

func ScanTokens(filename string, source []byte) ([]Token, error) {
	sc := NewScanner(filename, source)
	tokens := []Token{}
	for {
		tok, err := sc.Scan()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return tokens, nil
}

type Scanner struct {
	filename  string
	source    []byte
	start     int
	end       int
	line      int
	lineStart int
}

func NewScanner(filename string, source []byte) Scanner {
	const DEFAULT_LINE int = 1
	return Scanner{
		filename: filename,
		source:   source,
		line:     DEFAULT_LINE,
	}
}

func (s *Scanner) Scan() (Token, error) {
	s.skipWhitespace()
	s.start = s.end
	var t Token
	switch c := s.next(); c {
	case 0:
		t = s.token(EOF)
	case '+':
		s.advance()
		t = s.token(PLUS)
	case '-':
		s.advance()
		t = s.token(MINUS)
	case '*':
		s.advance()
		t = s.token(STAR)
	case '/':
		s.advance()
		t = s.token(SLASH)
	case '%':
		s.advance()
		t = s.token(PERCENT)
	case '(':
		s.advance()
		t = s.token(LEFTPAREN)
	case ')':
		s.advance()
		t = s.token(RIGHTPAREN)
	case '{':
		s.advance()
		t = s.token(LEFTBRACE)
	case '}':
		s.advance()
		t = s.token(RIGHTBRACE)
	case '[':
		s.advance()
		t = s.token(LEFTBRACKET)
	case ']':
		s.advance()
		t = s.token(RIGHTBRACKET)
	case ';':
		s.advance()
		t = s.token(SEMICOLON)
	case ',':
		s.advance()
		t = s.token(COMMA)
	case ':':
		s.advance()
		t = s.token(COLON)
	case '=':
		t = s.pair('=', EQUALITY, ASSIGN)
	case '!':
		t = s.pair('=', NOT_EQUAL, NOT)
	case '<':
		t = s.pair('=', LESS_EQUAL, LESS)
	case '>':
		t = s.pair('=', GREATER_EQUAL, GREATER)
	case '&':
		t = s.pair('&', AND, BIT_AND)
	case '|':
		s.advance()
		switch s.next() {
		case '|':
			s.advance()
			t = s.token(OR)
		case '>':
			s.advance()
			t = s.token(PIPE)
		default:
			t = s.token(BIT_OR)
		}
	case '?':
		s.advance()
		if s.next() != '?' {
			return s.token(EOF), NewSyntaxError(s.pos(), "expected '??', but got '?'")
		}
		s.advance()
		t = s.token(DOUBLE_QST)
	case '.':
		s.advance()
		if s.next() == '.' && s.peek(1) == '.' {
			s.advance()
			s.advance()
			t = s.token(RANGE)
		} else {
			t = s.token(DOT)
		}
	case '"':
		return s.str()
	case '\'':
		return s.char()
	default:
		if isId(c) {
			return s.id(), nil
		}
		if isNum(c) {
			return s.num(), nil
		}
		return s.token(EOF), NewSyntaxError(s.pos(), "unexpected character: %c", c)
	}
	return t, nil
}

func isId(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || c == '_'
}

func isNum(c byte) bool {
	return '0' <= c && c <= '9'
}

func (s *Scanner) pair(second byte, double, single TokenKind) Token {
	s.advance()
	if s.next() == second {
		s.advance()
		return s.token(double)
	}
	return s.token(single)
}

func (s *Scanner) id() Token {
	for {
		c := s.next()
		if !isId(c) && !isNum(c) {
			break
		}
		s.advance()
	}
	t := s.token(IDENTIFIER)
	if kw, ok := keywords[string(t.Content)]; ok {
		t.Kind = kw
	}
	return t
}

func (s *Scanner) num() Token {
	for isNum(s.next()) {
		s.advance()
	}
	if s.next() == '.' && isNum(s.peek(1)) {
		s.advance()
		for isNum(s.next()) {
			s.advance()
		}
		return s.token(FLOAT)
	}
	return s.token(INTEGER)
}

// str scans a string literal. The token content excludes the quotes;
// escape sequences are kept as written since they are valid C as well.
func (s *Scanner) str() (Token, error) {
	pos := s.pos()
	s.advance()
	for {
		switch s.next() {
		case 0, '\n':
			return s.token(EOF), NewSyntaxError(pos, "unterminated string literal")
		case '\\':
			s.advance()
			s.advance()
		case '"':
			t := s.quoted(STRING, pos)
			return t, nil
		default:
			s.advance()
		}
	}
}

func (s *Scanner) char() (Token, error) {
	pos := s.pos()
	s.advance()
	if s.next() == '\\' {
		s.advance()
	}
	if s.next() == 0 || s.next() == '\n' {
		return s.token(EOF), NewSyntaxError(pos, "unterminated character literal")
	}
	s.advance()
	if s.next() != '\'' {
		return s.token(EOF), NewSyntaxError(pos, "expected \"'\" quote after character")
	}
	return s.quoted(CHAR, pos), nil
}

func (s *Scanner) quoted(kind TokenKind, pos Pos) Token {
	content := s.source[s.start+1 : s.end]
	s.advance()
	s.start = s.end
	return Token{
		Pos:     pos,
		Kind:    kind,
		Content: content,
	}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.next() {
		case ' ', '\t', '\r':
			s.advance()
		case '\n':
			s.advance()
			s.line++
			s.lineStart = s.end
		case '/':
			if s.peek(1) != '/' {
				return
			}
			for s.next() != '\n' && s.next() != 0 {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) next() byte {
	return s.peek(0)
}

func (s *Scanner) peek(n int) byte {
	if s.end+n >= len(s.source) {
		return 0
	}
	return s.source[s.end+n]
}

func (s *Scanner) advance() byte {
	c := s.next()
	s.end++
	return c
}

func (s *Scanner) pos() Pos {
	return Pos{
		Filename: s.filename,
		Line:     s.line,
		Column:   s.start - s.lineStart + 1,
	}
}

func (s *Scanner) token(t TokenKind) Token {
	end := mathutil.Clamp(s.end, 0, len(s.source))
	content := s.source[s.start:end]
	pos := s.pos()
	s.start = end
	return Token{
		Pos:     pos,
		Kind:    t,
		Content: content,
	}
}
