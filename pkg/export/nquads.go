package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// String renders t as one N-Quads statement in the default graph, without
// the trailing newline.
func (t Triple) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(escapeIRI(t.Subject))
	b.WriteString("> <")
	b.WriteString(escapeIRI(t.Predicate))
	b.WriteString("> ")
	if t.Object.IRI {
		b.WriteString("<")
		b.WriteString(escapeIRI(t.Object.Value))
		b.WriteString(">")
	} else {
		b.WriteString(`"`)
		b.WriteString(escapeLiteral(t.Object.Value))
		b.WriteString(`"`)
		if t.Object.Datatype != "" {
			b.WriteString("^^<")
			b.WriteString(escapeIRI(t.Object.Datatype))
			b.WriteString(">")
		}
	}
	b.WriteString(" .")
	return b.String()
}

// WriteNQuads writes one statement per line.
func WriteNQuads(w io.Writer, triples []Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.String()); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
	}
	return bw.Flush()
}

// ParseNQuads reads statements written by WriteNQuads. Blank lines and
// comment lines are skipped; a graph label, if present, is dropped.
func ParseNQuads(r io.Reader) ([]Triple, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	out := make([]Triple, 0)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := parseStatement(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read statements: %w", err)
	}
	return out, nil
}

type lexer struct {
	s   string
	pos int
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.s) && (l.s[l.pos] == ' ' || l.s[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.s) {
		return 0
	}
	return l.s[l.pos]
}

func (l *lexer) iri() (string, error) {
	l.skipSpace()
	if l.peek() != '<' {
		return "", fmt.Errorf("expected IRI at column %d", l.pos+1)
	}
	start := l.pos
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.s) {
			return "", fmt.Errorf("unterminated IRI at column %d", start+1)
		}
		c := l.s[l.pos]
		switch c {
		case '>':
			l.pos++
			return b.String(), nil
		case '\\':
			r, err := l.unicodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
}

// unicodeEscape decodes \uXXXX or \UXXXXXXXX at the current position.
func (l *lexer) unicodeEscape() (rune, error) {
	if l.pos+1 >= len(l.s) {
		return 0, fmt.Errorf("dangling escape")
	}
	var width int
	switch l.s[l.pos+1] {
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, fmt.Errorf("unknown escape \\%c", l.s[l.pos+1])
	}
	end := l.pos + 2 + width
	if end > len(l.s) {
		return 0, fmt.Errorf("short unicode escape at column %d", l.pos+1)
	}
	v, err := strconv.ParseUint(l.s[l.pos+2:end], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, fmt.Errorf("invalid unicode escape %q", l.s[l.pos:end])
	}
	l.pos = end
	return rune(v), nil
}

func (l *lexer) literal() (Term, error) {
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.s) {
			return Term{}, fmt.Errorf("unterminated literal")
		}
		c := l.s[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			l.pos++
			continue
		}
		if l.pos+1 >= len(l.s) {
			return Term{}, fmt.Errorf("dangling escape")
		}
		switch l.s[l.pos+1] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '\'':
			b.WriteByte('\'')
		case 'u', 'U':
			r, err := l.unicodeEscape()
			if err != nil {
				return Term{}, err
			}
			b.WriteRune(r)
			continue
		default:
			return Term{}, fmt.Errorf("unknown escape \\%c", l.s[l.pos+1])
		}
		l.pos += 2
	}

	term := Literal(b.String())
	switch {
	case strings.HasPrefix(l.s[l.pos:], "^^"):
		l.pos += 2
		dt, err := l.iri()
		if err != nil {
			return Term{}, err
		}
		term.Datatype = dt
	case l.peek() == '@':
		for l.pos < len(l.s) && l.s[l.pos] != ' ' && l.s[l.pos] != '\t' && l.s[l.pos] != '.' {
			l.pos++
		}
	}
	return term, nil
}

func parseStatement(text string) (Triple, error) {
	l := &lexer{s: text}

	subject, err := l.iri()
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	predicate, err := l.iri()
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}

	l.skipSpace()
	var object Term
	switch l.peek() {
	case '<':
		v, err := l.iri()
		if err != nil {
			return Triple{}, fmt.Errorf("object: %w", err)
		}
		object = IRI(v)
	case '"':
		object, err = l.literal()
		if err != nil {
			return Triple{}, fmt.Errorf("object: %w", err)
		}
	default:
		return Triple{}, fmt.Errorf("object: expected IRI or literal at column %d", l.pos+1)
	}

	l.skipSpace()
	if l.peek() == '<' {
		if _, err := l.iri(); err != nil {
			return Triple{}, fmt.Errorf("graph label: %w", err)
		}
		l.skipSpace()
	}
	if l.peek() != '.' {
		return Triple{}, fmt.Errorf("expected '.' at column %d", l.pos+1)
	}
	l.pos++
	l.skipSpace()
	if l.pos != len(l.s) {
		return Triple{}, fmt.Errorf("trailing content at column %d", l.pos+1)
	}

	return Triple{Subject: subject, Predicate: predicate, Object: object}, nil
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// escapeIRI writes characters an IRI reference may not hold as \u escapes.
func escapeIRI(s string) string {
	if !strings.ContainsFunc(s, iriForbidden) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if iriForbidden(r) {
			fmt.Fprintf(&b, `\u%04X`, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func iriForbidden(r rune) bool {
	return r <= 0x20 || strings.ContainsRune(`<>"{}|^\`+"`", r)
}
