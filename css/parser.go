package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// ParseError is returned when stylesheet text is not well formed.
type ParseError struct {
	Source string // what was being parsed, may be empty
	Line   int    // 1-based
	Column int    // 1-based, in bytes
	Reason string
}

func (e *ParseError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", src, e.Line, e.Column, e.Reason)
}

// IsParseError reports whether err (or anything it wraps) is a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Parser builds stylesheet trees out of CSS text. Tokenization is done by
// tdewolff lexer, parser only assembles blocks, rules and declarations keeping
// raw text of selectors, preludes and values. Comments are dropped.
type Parser struct {
	log    *zap.Logger
	strict bool
}

// ParserOption changes parser behavior.
type ParserOption func(*Parser)

// StrictStrings makes unclosed strings a parse error. By default a stray quote
// is kept as raw text and tokenizing resumes right after it, so corrupted
// values survive until they could be repaired.
func StrictStrings() ParserOption {
	return func(p *Parser) {
		p.strict = true
	}
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger, opts ...ParserOption) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Parser{log: log.Named("css-parser")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type token struct {
	tt     css.TokenType
	data   string
	offset int
}

// Parse parses CSS text into a tree.
// The optional source parameter identifies what's being parsed (for logging and errors).
func (p *Parser) Parse(data []byte, source ...string) (*Root, error) {
	var name string
	if len(source) > 0 {
		name = source[0]
	}
	if name != "" {
		p.log.Debug("Parsing CSS", zap.String("source", name), zap.Int("bytes", len(data)))
	}

	s := &state{data: data, source: name, strict: p.strict}
	if err := s.tokenize(); err != nil {
		return nil, err
	}
	for _, offset := range s.stray {
		line, col := position(data, offset)
		p.log.Debug("Stray quote kept", zap.String("source", name), zap.Int("line", line), zap.Int("column", col))
	}

	root := NewRoot()
	if err := s.block(root, -1); err != nil {
		p.log.Debug("CSS parse error", zap.String("source", name), zap.Error(err))
		return nil, err
	}
	p.log.Debug("Parsed CSS", zap.String("source", name), zap.Int("tokens", len(s.toks)), zap.Int("top-level", root.Len()))
	return root, nil
}

type state struct {
	data   []byte
	source string
	strict bool
	toks   []token
	pos    int
	stray  []int // offsets of unmatched quotes
}

func (s *state) tokenize() error {
	l := css.NewLexer(parse.NewInput(bytes.NewReader(s.data)))
	offset := 0
	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return s.errorf(offset, "%v", err)
			}
			return nil
		case css.BadStringToken, css.StringToken:
			if tt == css.StringToken && closed(text) {
				s.toks = append(s.toks, token{tt: tt, data: string(text), offset: offset})
				break
			}
			if s.strict {
				return s.errorf(offset, "unclosed string")
			}
			s.toks = append(s.toks, token{tt: css.DelimToken, data: string(text[:1]), offset: offset})
			s.stray = append(s.stray, offset)
			offset++
			l = css.NewLexer(parse.NewInput(bytes.NewReader(s.data[offset:])))
			continue
		case css.BadURLToken:
			return s.errorf(offset, "malformed url")
		case css.CommentToken, css.CDOToken, css.CDCToken:
			// dropped
		default:
			s.toks = append(s.toks, token{tt: tt, data: string(text), offset: offset})
		}
		offset += len(text)
	}
}

func (s *state) peek() (token, bool) {
	if s.pos >= len(s.toks) {
		return token{tt: css.ErrorToken, offset: len(s.data)}, false
	}
	return s.toks[s.pos], true
}

func (s *state) skipSpace() {
	for s.pos < len(s.toks) && s.toks[s.pos].tt == css.WhitespaceToken {
		s.pos++
	}
}

// block reads block members into c until matching '}' (or end of input for
// the root, open < 0).
func (s *state) block(c Container, open int) error {
	for {
		s.skipSpace()
		t, ok := s.peek()
		if !ok {
			if open >= 0 {
				return s.errorf(open, "unclosed block")
			}
			return nil
		}
		switch t.tt {
		case css.RightBraceToken:
			if open < 0 {
				return s.errorf(t.offset, "unexpected }")
			}
			s.pos++
			return nil
		case css.SemicolonToken:
			s.pos++
		case css.AtKeywordToken:
			if err := s.atRule(c); err != nil {
				return err
			}
		default:
			if err := s.ruleOrDecl(c); err != nil {
				return err
			}
		}
	}
}

// prelude consumes component values until ';', '{' or '}' on nesting level
// zero. Terminator is not consumed.
func (s *state) prelude() ([]token, token, error) {
	start := s.pos
	var closers []css.TokenType
	for {
		t, ok := s.peek()
		if !ok {
			if len(closers) > 0 {
				return nil, t, s.errorf(s.toks[start].offset, "unclosed bracket")
			}
			return s.toks[start:s.pos], t, nil
		}
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken:
			closers = append(closers, css.RightParenthesisToken)
		case css.LeftBracketToken:
			closers = append(closers, css.RightBracketToken)
		case css.LeftBraceToken:
			if len(closers) == 0 {
				return s.toks[start:s.pos], t, nil
			}
			closers = append(closers, css.RightBraceToken)
		case css.RightParenthesisToken, css.RightBracketToken:
			if len(closers) == 0 || closers[len(closers)-1] != t.tt {
				return nil, t, s.errorf(t.offset, "unexpected %s", t.data)
			}
			closers = closers[:len(closers)-1]
		case css.RightBraceToken:
			if len(closers) == 0 {
				return s.toks[start:s.pos], t, nil
			}
			if closers[len(closers)-1] != t.tt {
				return nil, t, s.errorf(t.offset, "unexpected }")
			}
			closers = closers[:len(closers)-1]
		case css.SemicolonToken:
			if len(closers) == 0 {
				return s.toks[start:s.pos], t, nil
			}
		}
		s.pos++
	}
}

func (s *state) atRule(c Container) error {
	at, _ := s.peek()
	s.pos++

	toks, term, err := s.prelude()
	if err != nil {
		return err
	}
	rule := &AtRule{Name: strings.TrimPrefix(at.data, "@"), Params: text(toks)}
	Append(c, rule)

	switch term.tt {
	case css.LeftBraceToken:
		s.pos++
		rule.HasBody = true
		return s.block(rule, term.offset)
	case css.SemicolonToken:
		s.pos++
	}
	// '}' or end of input terminate statement as well
	return nil
}

func (s *state) ruleOrDecl(c Container) error {
	toks, term, err := s.prelude()
	if err != nil {
		return err
	}
	if term.tt == css.LeftBraceToken {
		s.pos++
		rule := &Rule{Selector: text(toks)}
		Append(c, rule)
		return s.block(rule, term.offset)
	}
	if term.tt == css.SemicolonToken {
		s.pos++
	}

	decl, ok := declaration(toks)
	if !ok {
		return s.errorf(toks[0].offset, "unknown word %q", strings.TrimSpace(toks[0].data))
	}
	Append(c, decl)
	return nil
}

// declaration splits tokens at first colon on nesting level zero and
// recognizes trailing "!important".
func declaration(toks []token) (*Declaration, bool) {
	colon, depth := -1, 0
	for i, t := range toks {
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.ColonToken:
			if depth == 0 {
				colon = i
			}
		}
		if colon >= 0 {
			break
		}
	}
	if colon < 0 {
		return nil, false
	}
	prop := text(toks[:colon])
	if prop == "" {
		return nil, false
	}

	value := toks[colon+1:]
	if text(value) == "" {
		return &Declaration{Prop: prop, Absent: true}, true
	}

	last := len(value) - 1
	for last >= 0 && value[last].tt == css.WhitespaceToken {
		last--
	}
	if last >= 0 && value[last].tt == css.IdentToken && strings.EqualFold(value[last].data, "important") {
		bang := last - 1
		for bang >= 0 && value[bang].tt == css.WhitespaceToken {
			bang--
		}
		if bang >= 0 && value[bang].tt == css.DelimToken && value[bang].data == "!" {
			return NewDecl(prop, text(value[:bang]), true), true
		}
	}
	return NewDecl(prop, text(value), false), true
}

// closed reports whether string token ends with its own unescaped quote,
// lexer returns strings cut by end of input as regular string tokens.
func closed(str []byte) bool {
	n := len(str)
	if n < 2 || str[n-1] != str[0] {
		return false
	}
	escapes := 0
	for i := n - 2; i > 0 && str[i] == '\\'; i-- {
		escapes++
	}
	return escapes%2 == 0
}

func text(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.data)
	}
	return strings.TrimSpace(sb.String())
}

func (s *state) errorf(offset int, format string, a ...any) error {
	line, col := position(s.data, offset)
	return &ParseError{Source: s.source, Line: line, Column: col, Reason: fmt.Sprintf(format, a...)}
}

func position(data []byte, offset int) (line, col int) {
	if offset > len(data) {
		offset = len(data)
	}
	head := data[:offset]
	line = bytes.Count(head, []byte{'\n'}) + 1
	col = offset - bytes.LastIndexByte(head, '\n')
	return line, col
}
