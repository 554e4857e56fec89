package task

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse errors. Use errors.Is to tell them apart.
var (
	ErrMissingInterval   = errors.New("missing #interval token")
	ErrDuplicateInterval = errors.New("more than one #interval token")
	ErrDuplicateDate     = errors.New("more than one @date token")
	ErrInvalidInterval   = errors.New("interval must be a non-negative integer")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
)

// ParseError describes a malformed task line.
type ParseError struct {
	Line  int    // 1-based line number, 0 when parsing a single line
	Token string // offending token, if any
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Err.Error())
	if e.Token != "" {
		fmt.Fprintf(&b, ": %q", e.Token)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLine parses one task line.
func ParseLine(line string) (Task, error) {
	return parseTokens(Lex(line))
}

// parseTokens checks the token structure and converts values.
func parseTokens(tokens []Token) (Task, error) {
	var dateTok, intervalTok *Token
	names := make([]string, 0, len(tokens))
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case TokenDate:
			if dateTok != nil {
				return Task{}, &ParseError{Token: tok.Text, Err: ErrDuplicateDate}
			}
			dateTok = tok
		case TokenInterval:
			if intervalTok != nil {
				return Task{}, &ParseError{Token: tok.Text, Err: ErrDuplicateInterval}
			}
			intervalTok = tok
		default:
			names = append(names, tok.Text)
		}
	}
	if intervalTok == nil {
		return Task{}, &ParseError{Err: ErrMissingInterval}
	}

	interval, err := parseInterval(intervalTok.Value())
	if err != nil {
		return Task{}, &ParseError{Token: intervalTok.Text, Err: err}
	}

	t := Task{
		Name:     strings.Join(names, " "),
		Interval: interval,
	}
	if dateTok != nil {
		d, err := ParseDate(dateTok.Value())
		if err != nil {
			return Task{}, &ParseError{Token: dateTok.Text, Err: ErrInvalidDate}
		}
		t.Due = &d
	}
	return t, nil
}

func parseInterval(s string) (int, error) {
	if s == "" {
		return 0, ErrInvalidInterval
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, ErrInvalidInterval
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	return n, nil
}
