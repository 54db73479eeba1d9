package latexmd

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Tokenizer reads tokens from a window of the source document. Offsets are always
// absolute, so sub-tokenizers created for command arguments report positions in
// the original document.
type Tokenizer struct {
	src     string
	pos     int
	end     int
	pending []any
	issue   func(err error, offset int)
}

func NewTokenizer(src string) *Tokenizer {
	return newTokenizer(src, 0, len(src), nil)
}

func newTokenizer(src string, start, end int, issue func(error, int)) *Tokenizer {
	return &Tokenizer{src: src, pos: start, end: end, issue: issue}
}

// Offset returns the position just past the input consumed so far.
func (l *Tokenizer) Offset() int {
	return l.pos
}

// Seek moves the tokenizer to pos, dropping anything queued. Used after the
// parser consumed a command argument directly from the source.
func (l *Tokenizer) Seek(pos int) {
	l.pending = nil
	l.pos = min(pos, l.end)
}

func (l *Tokenizer) Token() (any, error) {
	if len(l.pending) > 0 {
		token := l.pending[0]
		l.pending = l.pending[1:]
		return token, nil
	}

	if l.pos >= l.end {
		return nil, io.EOF
	}

	switch l.src[l.pos] {
	case '{':
		l.pos++
		return BraceOpen{}, nil
	case '}':
		l.pos++
		return BraceClose{}, nil
	case '%':
		l.pos++
		return CommentStart{}, nil
	case '$':
		return l.readDollar()
	case '\\':
		return l.readBackslash()
	default:
		return l.readText()
	}
}

// Line consumes the rest of the current line, excluding the line break. The
// parser calls it right after CommentStart.
func (l *Tokenizer) Line() string {
	rest := l.src[l.pos:l.end]

	n := strings.IndexByte(rest, '\n')
	if n < 0 {
		n = len(rest)
	}

	l.pos += n
	return rest[:n]
}

func (l *Tokenizer) readText() (any, error) {
	start := l.pos
	for l.pos < l.end && !isSpecial(l.src[l.pos]) {
		l.pos++
	}

	return Text(l.src[start:l.pos]), nil
}

func (l *Tokenizer) readDollar() (any, error) {
	start := l.pos
	if start+1 < l.end && l.src[start+1] == '$' {
		return l.readMath(Display, start, start+2, "$$"), nil
	}

	return l.readMath(Inline, start, start+1, "$"), nil
}

func (l *Tokenizer) readBackslash() (any, error) {
	start := l.pos
	if start+1 >= l.end {
		l.pos = l.end
		return Text("\\"), nil
	}

	next := l.src[start+1]
	switch {
	case isLetter(next):
		l.pos = start + 1
		name := l.word()

		if name == "begin" || name == "end" {
			if env, ok := l.readEnvironmentName(); ok {
				if name == "begin" {
					return EnvironmentBegin{Name: env}, nil
				}

				return EnvironmentEnd{Name: env}, nil
			}
		}

		return Command(name), nil
	case next == '(':
		return l.readMath(Inline, start, start+2, "\\)"), nil
	case next == '[':
		return l.readMath(Display, start, start+2, "\\]"), nil
	case next == '%':
		// the result is a literal %, which starts a comment if the output is
		// converted again
		l.pos = start + 2
		return Text("%"), nil
	default:
		// any other escaped character is kept as written, including the backslash
		_, size := utf8.DecodeRuneInString(l.src[start+1 : l.end])
		l.pos = start + 1 + size
		return Text(l.src[start:l.pos]), nil
	}
}

// readMath scans for the closing delimiter and queues the raw content and the
// closing boundary. Without a closing delimiter the rest of the window, starting
// at the opening delimiter, is returned as plain text.
func (l *Tokenizer) readMath(kind MathKind, start, from int, closing string) any {
	for i := from; i < l.end; {
		if strings.HasPrefix(l.src[i:l.end], closing) {
			l.pending = append(l.pending, Text(l.src[from:i]), MathBoundary{Kind: kind, Edge: Close})
			l.pos = i + len(closing)
			return MathBoundary{Kind: kind, Edge: Open}
		}

		// escaped symbol, e.g. \$ never closes math
		if l.src[i] == '\\' {
			i += 2
			continue
		}

		i++
	}

	if l.issue != nil {
		l.issue(ErrUnterminatedMath, start)
	}

	l.pos = l.end
	return Text(l.src[start:l.end])
}

// readEnvironmentName reads {name} following \begin or \end. The position is left
// untouched if there is no well-formed name.
func (l *Tokenizer) readEnvironmentName() (string, bool) {
	i := l.pos
	for i < l.end && isBlank(l.src[i]) {
		i++
	}

	if i >= l.end || l.src[i] != '{' {
		return "", false
	}

	i++
	start := i
	for i < l.end && (isLetter(l.src[i]) || l.src[i] == '*') {
		i++
	}

	if i == start || i >= l.end || l.src[i] != '}' {
		return "", false
	}

	l.pos = i + 1
	return l.src[start:i], true
}

// word reads sequence of letters
func (l *Tokenizer) word() string {
	start := l.pos
	for l.pos < l.end && isLetter(l.src[l.pos]) {
		l.pos++
	}

	return l.src[start:l.pos]
}

// isLetter returns true for a letter
func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// isSpecial returns true if a symbol has a special meaning and should interrupt text reading
func isSpecial(c byte) bool {
	switch c {
	case '\\', '$', '%', '{', '}':
		return true
	default:
		return false
	}
}

// isBlank reports horizontal whitespace
func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\n', '\t', '\r':
		return true
	default:
		return false
	}
}
