package task

import "strings"

// TokenKind classifies a token of a task line.
type TokenKind int

const (
	TokenName TokenKind = iota
	TokenDate
	TokenInterval
)

func (k TokenKind) String() string {
	switch k {
	case TokenName:
		return "name"
	case TokenDate:
		return "date"
	case TokenInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// Token is one space-separated element of a task line.
type Token struct {
	Kind TokenKind
	// Text is the token as written, including any prefix.
	Text string
}

// Value returns the token text without its "@" or "#" prefix.
func (t Token) Value() string {
	switch t.Kind {
	case TokenDate:
		return strings.TrimPrefix(t.Text, datePrefix)
	case TokenInterval:
		return strings.TrimPrefix(t.Text, intervalPrefix)
	default:
		return t.Text
	}
}

// Lex splits a line on single spaces and tags each token by its prefix.
// Empty tokens produced by repeated spaces are dropped.
func Lex(line string) []Token {
	line = strings.TrimRight(line, "\r")
	fields := strings.Split(line, " ")
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		kind := TokenName
		switch {
		case strings.HasPrefix(f, datePrefix):
			kind = TokenDate
		case strings.HasPrefix(f, intervalPrefix):
			kind = TokenInterval
		}
		tokens = append(tokens, Token{Kind: kind, Text: f})
	}
	return tokens
}
