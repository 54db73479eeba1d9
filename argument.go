package latexmd

import "errors"

// errNoArgument means the command is not followed by a group at all, which is not
// a markup problem, the command is simply kept as written.
var errNoArgument = errors.New("argument is expected")

// braceIndex pairs every "{" of the document with its closing "}" and every "["
// with its closing "]" in a single pass, so argument extraction never rescans
// the input. Brackets pair only within the same brace group. Unescaped "%"
// starts a comment, nothing up to the end of the line is indexed.
type braceIndex struct {
	match   map[int]int // offset of "{" => offset of matching "}"
	depth   map[int]int // offset of "{" => nesting depth of the group, 1 for {a}
	bracket map[int]int // offset of "[" => offset of matching "]"
}

func indexBraces(src string) *braceIndex {
	type group struct {
		pos      int
		inner    int
		brackets []int
	}

	idx := &braceIndex{match: map[int]int{}, depth: map[int]int{}, bracket: map[int]int{}}

	// the bottom group stands for the top level of the document
	stack := []group{{pos: -1}}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++ // escaped brace does not count
		case '%':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '[':
			top := &stack[len(stack)-1]
			top.brackets = append(top.brackets, i)
		case ']':
			top := &stack[len(stack)-1]
			if n := len(top.brackets); n > 0 {
				idx.bracket[top.brackets[n-1]] = i
				top.brackets = top.brackets[:n-1]
			}
		case '{':
			stack = append(stack, group{pos: i})
		case '}':
			if len(stack) == 1 {
				continue
			}

			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			depth := top.inner + 1
			idx.match[top.pos] = i
			idx.depth[top.pos] = depth

			if parent := &stack[len(stack)-1]; parent.inner < depth {
				parent.inner = depth
			}
		}
	}

	return idx
}

// argument finds the {...} group following pos and returns the bounds of its content
func (x *braceIndex) argument(src string, pos, end, maxDepth int) (int, int, error) {
	i := skipWhitespace(src, pos, end)
	if i >= end || src[i] != '{' {
		return 0, 0, errNoArgument
	}

	closing, ok := x.match[i]
	if !ok || closing >= end {
		return 0, 0, ErrUnbalancedBraces
	}

	if x.depth[i] > maxDepth {
		return 0, 0, ErrNestingTooDeep
	}

	return i + 1, closing, nil
}

// option finds the optional [...] group following pos. Groups in braces are skipped
// as a whole, so \item[{a]b}] is read as label "{a]b}".
func (x *braceIndex) option(src string, pos, end int) (int, int, bool) {
	i := skipWhitespace(src, pos, end)
	if i >= end || src[i] != '[' {
		return 0, 0, false
	}

	closing, ok := x.bracket[i]
	if !ok || closing >= end {
		return 0, 0, false
	}

	return i + 1, closing, true
}

// skipWhitespace returns position of the first non-whitespace symbol
func skipWhitespace(src string, pos, end int) int {
	for pos < end && isWhitespace(src[pos]) {
		pos++
	}

	return pos
}
