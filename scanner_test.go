package der_test

import (
	"der"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanTokensTest struct {
	source   []byte
	expected []der.TokenKind
}

var scanTokensTests = []scanTokensTest{
	{[]byte(""), []der.TokenKind{der.EOF}},
	{[]byte("\t"), []der.TokenKind{der.EOF}},
	{[]byte("\r\n"), []der.TokenKind{der.EOF}},
	{[]byte("// comment"), []der.TokenKind{der.EOF}},
	{[]byte("abc"), []der.TokenKind{der.IDENTIFIER, der.EOF}},
	{[]byte("123"), []der.TokenKind{der.INTEGER, der.EOF}},
	{[]byte("0.5"), []der.TokenKind{der.FLOAT, der.EOF}},
	{[]byte("\"abc\""), []der.TokenKind{der.STRING, der.EOF}},
	{[]byte("'a'"), []der.TokenKind{der.CHAR, der.EOF}},
	{[]byte("sa7i7 khata2"), []der.TokenKind{der.BOOL, der.BOOL, der.EOF}},
	{[]byte("123*123"), []der.TokenKind{der.INTEGER, der.STAR, der.INTEGER, der.EOF}},
	{[]byte("-1"), []der.TokenKind{der.MINUS, der.INTEGER, der.EOF}},
	{[]byte("0...10"), []der.TokenKind{der.INTEGER, der.RANGE, der.INTEGER, der.EOF}},
	{[]byte("a.b"), []der.TokenKind{der.IDENTIFIER, der.DOT, der.IDENTIFIER, der.EOF}},
	{[]byte("= == ! !="), []der.TokenKind{der.ASSIGN, der.EQUALITY, der.NOT, der.NOT_EQUAL, der.EOF}},
	{[]byte("< <= > >="), []der.TokenKind{der.LESS, der.LESS_EQUAL, der.GREATER, der.GREATER_EQUAL, der.EOF}},
	{[]byte("& && | || |>"), []der.TokenKind{der.BIT_AND, der.AND, der.BIT_OR, der.OR, der.PIPE, der.EOF}},
	{[]byte("??"), []der.TokenKind{der.DOUBLE_QST, der.EOF}},
	{[]byte("()[]{};,:"), []der.TokenKind{
		der.LEFTPAREN, der.RIGHTPAREN, der.LEFTBRACKET, der.RIGHTBRACKET,
		der.LEFTBRACE, der.RIGHTBRACE, der.SEMICOLON, der.COMMA, der.COLON, der.EOF,
	}},
	{[]byte("dir dalaton rje3 ila awla"), []der.TokenKind{der.DIR, der.DALATON, der.RJE3, der.ILA, der.AWLA, der.EOF}},
	{[]byte("jism ti3dad lkola jadid kant"), []der.TokenKind{der.JISM, der.TI3DAD, der.LKOLA, der.JADID, der.KANT, der.EOF}},
}

func TestScanTokens(t *testing.T) {
	for _, test := range scanTokensTests {
		tokens, err := der.ScanTokens("test.der", test.source)
		require.NoError(t, err, "source %q", test.source)
		kinds := make([]der.TokenKind, 0, len(tokens))
		for _, tok := range tokens {
			kinds = append(kinds, tok.Kind)
		}
		assert.Equal(t, test.expected, kinds, "source %q", test.source)
	}
}

func TestScanQuotedContent(t *testing.T) {
	tokens, err := der.ScanTokens("test.der", []byte(`"a\"b" '\n'`))
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, `a\"b`, string(tokens[0].Content))
	assert.Equal(t, `\n`, string(tokens[1].Content))
}

func TestScanPositions(t *testing.T) {
	tokens, err := der.ScanTokens("test.der", []byte("dir\n  a"))
	require.NoError(t, err)
	assert.Equal(t, der.Pos{Filename: "test.der", Line: 1, Column: 1}, tokens[0].Pos)
	assert.Equal(t, der.Pos{Filename: "test.der", Line: 2, Column: 3}, tokens[1].Pos)
	assert.Equal(t, "test.der:2:3", tokens[1].Pos.String())
}

func TestScanErrors(t *testing.T) {
	sources := []string{
		`"unterminated`,
		`'ab'`,
		`?`,
		`#`,
	}
	for _, source := range sources {
		_, err := der.ScanTokens("test.der", []byte(source))
		var syntaxErr *der.SyntaxError
		assert.ErrorAs(t, err, &syntaxErr, "source %q", source)
	}
}
