package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pgscope/internal/theme"
)

var sqlLexer = newSQLLexer()

func newSQLLexer() chroma.Lexer {
	l := lexers.Get("PostgreSQL")
	if l == nil {
		l = lexers.Get("SQL")
	}
	if l == nil {
		l = lexers.Fallback
	}
	return chroma.Coalesce(l)
}

// SQL tokenises a statement and styles each token with the active theme.
// On tokeniser failure the statement is returned unstyled.
func SQL(stmt string) string {
	iter, err := sqlLexer.Tokenise(nil, stmt)
	if err != nil {
		return stmt
	}

	th := theme.Current
	var b strings.Builder
	b.Grow(len(stmt) * 2)

	for _, tok := range iter.Tokens() {
		if tok.Value == "" {
			continue
		}
		style, ok := styleFor(tok.Type, th)
		if !ok {
			b.WriteString(tok.Value)
			continue
		}
		b.WriteString(style.Render(tok.Value))
	}
	return b.String()
}

// styleFor maps a chroma token type to a theme style. The second return
// value is false when the token should pass through unstyled.
func styleFor(tt chroma.TokenType, th *theme.Theme) (lipgloss.Style, bool) {
	switch {
	// KeywordType is a subtype of Keyword; check it first so SQL types
	// (INT, VARCHAR) keep their own colour.
	case tt == chroma.KeywordType:
		return th.SQLType, true
	case tt.InCategory(chroma.Keyword):
		return th.SQLKeyword, true
	case tt.InCategory(chroma.LiteralString):
		return th.SQLString, true
	case tt.InCategory(chroma.LiteralNumber):
		return th.SQLNumber, true
	case tt.InCategory(chroma.Comment):
		return th.SQLComment, true
	case tt == chroma.Operator || tt == chroma.OperatorWord:
		return th.SQLOperator, true
	default:
		return lipgloss.Style{}, false
	}
}
