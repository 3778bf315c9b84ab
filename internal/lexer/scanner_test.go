// internal/lexer/scanner_test.go
package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanBasicArithmetic(t *testing.T) {
	toks := NewScanner("2+3*4", "t.wr").ScanTokens()
	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	require.Equal(t, []TokenType{TokenNumber, TokenOp, TokenNumber, TokenOp, TokenNumber, TokenEOF}, kinds)
}

func TestScanStringEscapes(t *testing.T) {
	toks := NewScanner(`"hello\nworld"`, "t.wr").ScanTokens()
	require.Equal(t, TokenString, toks[0].Type)
	require.Equal(t, "hello\nworld", toks[0].Lexeme)
}

func TestScanUnicodeOperators(t *testing.T) {
	toks := NewScanner("a ≤ b", "t.wr").ScanTokens()
	require.Equal(t, TokenOp, toks[1].Type)
	require.Equal(t, "≤", toks[1].Lexeme)
}

func TestScanBackquoteCharVsString(t *testing.T) {
	toks := NewScanner("`a` `ab`", "t.wr").ScanTokens()
	require.Equal(t, TokenChar, toks[0].Type)
	require.Equal(t, TokenString, toks[1].Type)
}

func TestScanLineCommentAttachesToNextToken(t *testing.T) {
	s := NewScanner("// hi\n42", "t.wr")
	s.ScanTokens()
	// token index 0 is the newline, 1 is the number
	require.Equal(t, "hi", s.Comments[1])
}

func TestScanHexAndFloatExponent(t *testing.T) {
	toks := NewScanner("0xFF 1.5e3", "t.wr").ScanTokens()
	require.Equal(t, "0xFF", toks[0].Lexeme)
	require.Equal(t, "1.5e3", toks[1].Lexeme)
}
