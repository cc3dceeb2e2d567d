package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Literal is the body of one tagged GraphQL template literal.
type Literal struct {
	Line   int // 1-based line of the first body character
	Column int // 1-based column of the first body character
	Text   string
}

// Syntax selects the source dialect. TSX additionally recognizes JSX elements,
// whose text may hold quotes and backticks.
type Syntax int

const (
	TypeScript Syntax = iota
	TSX
)

// SyntaxFor picks the dialect from a file name.
func SyntaxFor(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return TSX
	default:
		return TypeScript
	}
}

// tags are the template tags whose literals hold GraphQL documents.
var tags = map[string]bool{
	"gql":     true,
	"graphql": true,
}

// exprKeywords are the keywords after which a '/' starts a regular expression
// and a '<' may start a JSX element.
var exprKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "new": true, "delete": true, "void": true,
	"throw": true, "instanceof": true, "yield": true, "await": true,
}

// ExtractLiterals returns the bodies of every gql`...` and graphql`...` tagged
// template in a TypeScript source, in source order.
//
// Interpolations (${...}) are replaced by spaces, newlines kept, so positions in
// the returned text line up with the source. Comments, string and regular
// expression literals, untagged templates and, for TSX, JSX text are skipped.
func ExtractLiterals(src []byte, syntax Syntax) ([]Literal, error) {
	s := &scanner{src: src, jsx: syntax == TSX}
	if err := s.code(-1); err != nil {
		return nil, err
	}
	return s.out, nil
}

type scanner struct {
	src []byte
	pos int
	jsx bool
	out []Literal

	// exprStart is set where an expression may begin, which decides whether
	// '/' opens a regular expression and '<' a JSX element.
	exprStart bool
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) position(off int) (line, col int) {
	line = bytes.Count(s.src[:off], []byte{'\n'}) + 1
	col = off - (bytes.LastIndexByte(s.src[:off], '\n') + 1) + 1
	return line, col
}

// code scans source text. With open < 0 it runs to the end of input; otherwise
// open is the offset of a '{' already consumed and code returns after its
// matching '}'.
func (s *scanner) code(open int) error {
	depth := 0
	s.exprStart = true
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peek(1) == '*':
			if err := s.skipBlockComment(); err != nil {
				return err
			}
		case c == '/' && s.exprStart:
			s.skipRegexp()
			s.exprStart = false
		case c == '\'' || c == '"':
			s.skipString(c)
			s.exprStart = false
		case c == '`':
			if _, err := s.template(false); err != nil {
				return err
			}
			s.exprStart = false
		case c == '<' && s.jsx && s.exprStart && (isIdentStart(s.peek(1)) || s.peek(1) == '>'):
			if s.element() {
				s.exprStart = false
			} else {
				s.pos++
				s.exprStart = true
			}
		case isIdentStart(c):
			if err := s.identifier(); err != nil {
				return err
			}
		case c >= '0' && c <= '9':
			for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			s.exprStart = false
		case c == '{':
			depth++
			s.pos++
			s.exprStart = true
		case c == '}':
			s.pos++
			if depth == 0 && open >= 0 {
				return nil
			}
			if depth > 0 {
				depth--
			}
			s.exprStart = true
		case c == ')' || c == ']':
			s.pos++
			s.exprStart = false
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		default:
			s.pos++
			s.exprStart = true
		}
	}
	if open >= 0 {
		line, _ := s.position(open)
		return fmt.Errorf("line %d: unclosed brace", line)
	}
	return nil
}

// identifier consumes a word and, when it is a tag followed by a template,
// records the template body.
func (s *scanner) identifier() error {
	start := s.pos
	ident := s.ident()
	s.exprStart = exprKeywords[ident]
	if !tags[ident] || (start > 0 && s.src[start-1] == '.') {
		return nil
	}
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != '`' {
		return nil
	}
	bodyStart := s.pos + 1
	// Reserve the slot so literals nested in interpolations follow this one.
	idx := len(s.out)
	s.out = append(s.out, Literal{})
	text, err := s.template(true)
	if err != nil {
		return err
	}
	line, col := s.position(bodyStart)
	s.out[idx] = Literal{Line: line, Column: col, Text: text}
	s.exprStart = false
	return nil
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() error {
	start := s.pos
	end := bytes.Index(s.src[s.pos+2:], []byte("*/"))
	if end < 0 {
		line, _ := s.position(start)
		return fmt.Errorf("line %d: unterminated block comment", line)
	}
	s.pos += 2 + end + 2
	return nil
}

// skipString skips a quoted string. An unescaped newline ends it, matching how
// editors recover from a missing quote.
func (s *scanner) skipString(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case quote, '\n':
			s.pos++
			return
		}
		s.pos++
	}
}

// skipRegexp skips a regular expression literal and its flags. A '/' inside a
// character class does not end it; a newline does.
func (s *scanner) skipRegexp() {
	s.pos++
	inClass := false
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case '\n':
			return
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				s.pos++
				for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
					s.pos++
				}
				return
			}
		}
		s.pos++
	}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) ident() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

// template consumes a template literal starting at the opening backtick. When
// keep is set the body is returned with interpolations blanked.
func (s *scanner) template(keep bool) (string, error) {
	start := s.pos
	s.pos++
	var buf bytes.Buffer
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\':
			if keep {
				buf.WriteByte(s.peek(1))
			}
			s.pos += 2
		case c == '`':
			s.pos++
			return buf.String(), nil
		case c == '$' && s.peek(1) == '{':
			exprStart := s.pos
			s.pos += 2
			if err := s.code(exprStart); err != nil {
				return "", err
			}
			if keep {
				blank(&buf, s.src[exprStart:s.pos])
			}
		default:
			if keep {
				buf.WriteByte(c)
			}
			s.pos++
		}
	}
	line, _ := s.position(start)
	return "", fmt.Errorf("line %d: unterminated template literal", line)
}

// element consumes a JSX element or fragment starting at '<'. When the text
// turns out not to be one, such as the type parameters of a generic arrow
// function, it restores the scanner and reports false.
func (s *scanner) element() bool {
	start, found := s.pos, len(s.out)
	if ok, closed := s.openTag(); ok && (closed || s.children()) {
		return true
	}
	s.pos = start
	s.out = s.out[:found]
	return false
}

// openTag consumes "<name attrs>", "<name attrs/>" or "<>". closed reports a
// self-closing tag, which has no children.
func (s *scanner) openTag() (ok, closed bool) {
	s.pos++
	if s.peek(0) == '>' {
		s.pos++
		return true, false
	}
	s.jsxName()
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return false, false
		}
		c := s.src[s.pos]
		switch {
		case c == '/' && s.peek(1) == '>':
			s.pos += 2
			return true, true
		case c == '>':
			s.pos++
			return true, false
		case c == '{':
			s.pos++
			if err := s.code(s.pos - 1); err != nil {
				return false, false
			}
		case isIdentStart(c):
			s.jsxName()
			s.skipSpace()
			if s.peek(0) != '=' {
				continue
			}
			s.pos++
			s.skipSpace()
			switch q := s.peek(0); q {
			case '"', '\'':
				end := bytes.IndexByte(s.src[s.pos+1:], q)
				if end < 0 {
					return false, false
				}
				s.pos += end + 2
			case '{':
				s.pos++
				if err := s.code(s.pos - 1); err != nil {
					return false, false
				}
			default:
				return false, false
			}
		default:
			return false, false
		}
	}
}

// children consumes element content through the matching closing tag.
func (s *scanner) children() bool {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '{':
			s.pos++
			if err := s.code(s.pos - 1); err != nil {
				return false
			}
		case c == '<' && s.peek(1) == '/':
			end := bytes.IndexByte(s.src[s.pos:], '>')
			if end < 0 {
				return false
			}
			s.pos += end + 1
			return true
		case c == '<' && (isIdentStart(s.peek(1)) || s.peek(1) == '>'):
			if !s.element() {
				return false
			}
		default:
			s.pos++
		}
	}
	return false
}

// jsxName consumes a tag or attribute name such as "div", "Foo.Bar",
// "aria-label" or "xlink:href".
func (s *scanner) jsxName() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if !isIdentPart(c) && c != '.' && c != '-' && c != ':' {
			return
		}
		s.pos++
	}
}

func blank(buf *bytes.Buffer, src []byte) {
	for _, c := range src {
		if c == '\n' {
			buf.WriteByte('\n')
		} else {
			buf.WriteByte(' ')
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
