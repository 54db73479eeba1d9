package latexmd

import "strings"

// Parser builds a node sequence from a document. Every construct it cannot
// interpret is kept as written (PassthroughNode) and recorded in the report.
type Parser struct {
	src      string
	end      int
	tokens   *Tokenizer
	braces   *braceIndex
	rules    Rules
	depth    int
	maxDepth int
	report   *Report
}

func Parse(src string) []*Node {
	return NewParser(src).Parse()
}

func NewParser(src string, options ...Option) *Parser {
	s := configure(options)

	p := &Parser{
		src:      src,
		end:      len(src),
		braces:   indexBraces(src),
		rules:    s.rules,
		maxDepth: s.maxDepth,
		report:   &Report{},
	}

	p.tokens = newTokenizer(src, 0, len(src), p.issue)
	return p
}

func (p *Parser) Parse() []*Node {
	nodes, _, _ := p.sequence(func(any) bool { return false })
	return nodes
}

// Report returns issues found so far.
func (p *Parser) Report() Report {
	return *p.report
}

func (p *Parser) issue(err error, offset int) {
	p.report.add(err, offset)
}

// sequence parses tokens until stop returns true for a token or input ends. The
// stopping token is returned with its offset, it is nil at the end of input.
func (p *Parser) sequence(stop func(any) bool) ([]*Node, any, int) {
	var seq nodeList

	for {
		start := p.tokens.Offset()

		t, err := p.tokens.Token()
		if err != nil {
			return seq.nodes(), nil, start
		}

		if stop(t) {
			return seq.nodes(), t, start
		}

		seq.append(p.parse(t, start)...)
	}
}

// deeper returns parser for nested content, sharing the token stream
func (p *Parser) deeper() (*Parser, bool) {
	if p.depth >= p.maxDepth {
		return nil, false
	}

	child := *p
	child.depth++

	return &child, true
}

// window returns parser reading only [start, end) of the document
func (p *Parser) window(start, end int) *Parser {
	child := *p
	child.end = end
	child.tokens = newTokenizer(p.src, start, end, p.issue)

	return &child
}

// closing is true for \end of any environment which is not transparent
func (p *Parser) closing(t any) bool {
	end, ok := t.(EnvironmentEnd)
	if !ok {
		return false
	}

	rule, ok := p.rules.Environment(end.Name)
	return !ok || rule.Handling != Transparent
}

func (p *Parser) parse(t any, start int) []*Node {
	switch token := t.(type) {
	case Text:
		return []*Node{text(string(token))}
	case BraceOpen:
		return []*Node{passthrough("{")}
	case BraceClose:
		return []*Node{passthrough("}")}
	case MathBoundary:
		return []*Node{p.math(token, start)}
	case CommentStart:
		return []*Node{{Kind: CommentNode, Data: p.tokens.Line()}}
	case Command:
		return []*Node{p.command(token, start)}
	case EnvironmentBegin:
		return p.environment(token, start)
	case EnvironmentEnd:
		if !p.closing(token) {
			return nil
		}

		// \end without \begin
		p.issue(ErrMismatchedEnvironment, start)
		return []*Node{passthrough(p.src[start:p.tokens.Offset()])}
	default:
		return nil
	}
}

// math reads raw content and closing boundary queued by the tokenizer
func (p *Parser) math(b MathBoundary, start int) *Node {
	if b.Edge == Close {
		return passthrough(p.src[start:p.tokens.Offset()])
	}

	raw, _ := p.tokens.Token()
	_, _ = p.tokens.Token()

	data, _ := raw.(Text)

	style := InlineMath
	if b.Kind == Display {
		style = DisplayMath
	}

	return &Node{Kind: MathNode, Style: style, Data: string(data)}
}

func (p *Parser) command(c Command, start int) *Node {
	source := p.src[start:p.tokens.Offset()]

	rule, ok := p.rules.Command(string(c))
	if !ok {
		return passthrough(source)
	}

	pos := p.tokens.Offset()
	arg := Argument{}

	if rule.Options {
		if from, to, ok := p.braces.option(p.src, pos, p.end); ok {
			arg.Option = p.src[from:to]
			pos = to + 1
		}
	}

	if rule.Args > 0 {
		from, to, err := p.braces.argument(p.src, pos, p.end, p.maxDepth)
		if err != nil {
			if err != errNoArgument {
				p.issue(err, start)
			}

			return passthrough(source)
		}

		arg.Raw = p.src[from:to]

		if rule.Handling == Recursive {
			child, ok := p.deeper()
			if !ok {
				p.issue(ErrNestingTooDeep, start)
				return passthrough(source)
			}

			arg.Children = child.window(from, to).Parse()
		}

		pos = to + 1
	}

	p.tokens.Seek(pos)

	if rule.Build == nil {
		return nil
	}

	return rule.Build(arg)
}

func (p *Parser) environment(e EnvironmentBegin, start int) []*Node {
	rule, ok := p.rules.Environment(e.Name)
	if !ok {
		return p.unknownEnvironment(e, start)
	}

	switch rule.Handling {
	case Transparent:
		return nil
	case Verbatim:
		return []*Node{p.verbatimEnvironment(rule, start)}
	case Items:
		return p.itemEnvironment(rule, e, start)
	default:
		return p.recursiveEnvironment(rule, e, start)
	}
}

// unknownEnvironment keeps \begin and \end as written and parses content in between
func (p *Parser) unknownEnvironment(e EnvironmentBegin, start int) []*Node {
	nodes := []*Node{passthrough(p.src[start:p.tokens.Offset()])}

	child, ok := p.deeper()
	if !ok {
		p.issue(ErrNestingTooDeep, start)
		return nodes
	}

	children, last, lastStart := child.sequence(p.closing)
	nodes = append(nodes, children...)

	end, ok := last.(EnvironmentEnd)
	if ok && end.Name == e.Name {
		return append(nodes, passthrough(p.src[lastStart:p.tokens.Offset()]))
	}

	// leave foreign \end to the enclosing environment
	if ok {
		p.tokens.Seek(lastStart)
	}

	p.issue(ErrMismatchedEnvironment, start)
	return nodes
}

func (p *Parser) recursiveEnvironment(rule EnvironmentRule, e EnvironmentBegin, start int) []*Node {
	child, ok := p.deeper()
	if !ok {
		p.issue(ErrNestingTooDeep, start)
		return []*Node{passthrough(p.src[start:p.tokens.Offset()])}
	}

	from := p.tokens.Offset()

	children, last, lastStart := child.sequence(p.closing)
	if end, ok := last.(EnvironmentEnd); !ok || end.Name != e.Name {
		p.issue(ErrMismatchedEnvironment, start)
		return []*Node{passthrough(p.src[start:p.tokens.Offset()])}
	}

	if rule.Build == nil {
		return children
	}

	return []*Node{rule.Build(Argument{Raw: p.src[from:lastStart], Children: children})}
}

// verbatimEnvironment captures everything up to the matching \end as is
func (p *Parser) verbatimEnvironment(rule EnvironmentRule, start int) *Node {
	from := p.tokens.Offset()

	to, after, err := p.findEnd(rule.Name, from)
	p.tokens.Seek(after)

	if err != nil {
		p.issue(err, start)
		return passthrough(p.src[start:after])
	}

	if rule.Build == nil {
		return nil
	}

	return rule.Build(Argument{Raw: p.src[from:to]})
}

// findEnd looks for \end{name} matching an already opened environment, nested
// environments of any name must be closed in order. It returns position of the
// \end and position right after it.
func (p *Parser) findEnd(name string, from int) (int, int, error) {
	stack := []string{name}

	for i := from; i < p.end; i++ {
		if p.src[i] != '\\' {
			continue
		}

		l := newTokenizer(p.src, i+1, p.end, nil)

		word := l.word()
		if word == "begin" || word == "end" {
			if env, ok := l.readEnvironmentName(); ok {
				switch {
				case word == "begin" && len(stack) >= p.maxDepth:
					return i, l.Offset(), ErrNestingTooDeep
				case word == "begin":
					stack = append(stack, env)
				case env != stack[len(stack)-1]:
					return i, l.Offset(), ErrMismatchedEnvironment
				default:
					stack = stack[:len(stack)-1]
					if len(stack) == 0 {
						return i, l.Offset(), nil
					}
				}
			}
		}

		// skip command name or escaped symbol
		i = max(l.Offset(), i+2) - 1
	}

	return p.end, p.end, ErrMismatchedEnvironment
}

// itemEnvironment reads an environment with multiple items defined by \item command
func (p *Parser) itemEnvironment(rule EnvironmentRule, e EnvironmentBegin, start int) []*Node {
	child, ok := p.deeper()
	if !ok {
		p.issue(ErrNestingTooDeep, start)
		return []*Node{passthrough(p.src[start:p.tokens.Offset()])}
	}

	stop := func(t any) bool {
		if c, ok := t.(Command); ok {
			return c == "item"
		}

		return p.closing(t)
	}

	from := p.tokens.Offset()

	var preamble, items []*Node
	var item *Node

	for {
		children, last, lastStart := child.sequence(stop)

		// content before the first \item
		if item == nil {
			preamble = children
		} else {
			item.Children = children
			items = append(items, item)
		}

		if _, ok := last.(Command); ok {
			item = &Node{Kind: ItemNode}

			if lo, hi, ok := p.braces.option(p.src, p.tokens.Offset(), p.end); ok {
				item.Parameters = map[string]string{"label": p.src[lo:hi]}
				item.Label = child.window(lo, hi).Parse()
				p.tokens.Seek(hi + 1)
			}

			continue
		}

		if end, ok := last.(EnvironmentEnd); !ok || end.Name != e.Name {
			p.issue(ErrMismatchedEnvironment, start)
			return []*Node{passthrough(p.src[start:p.tokens.Offset()])}
		}

		node := rule.Build(Argument{Raw: p.src[from:lastStart], Children: items})
		if blank(preamble) {
			return []*Node{node}
		}

		return append(preamble, node)
	}
}

// nodeList collects nodes, merging consequent text nodes together. Text is
// buffered until the next non-text node, so long runs of short tokens are
// joined in linear time. Horizontal whitespace in front of a comment belongs to
// the comment.
type nodeList struct {
	list []*Node
	text strings.Builder
}

func (s *nodeList) append(next ...*Node) {
	for _, node := range next {
		if node == nil {
			continue
		}

		switch node.Kind {
		case TextNode:
			s.text.WriteString(node.Data)
			continue
		case CommentNode:
			pending := strings.TrimRight(s.text.String(), " \t")
			s.text.Reset()
			s.text.WriteString(pending)
		}

		s.flush()
		s.list = append(s.list, node)
	}
}

func (s *nodeList) flush() {
	if s.text.Len() == 0 {
		return
	}

	s.list = append(s.list, text(s.text.String()))
	s.text.Reset()
}

func (s *nodeList) nodes() []*Node {
	s.flush()
	return s.list
}

// blank is true if nodes render to whitespace only
func blank(nodes []*Node) bool {
	for _, node := range nodes {
		switch node.Kind {
		case CommentNode:
		case TextNode:
			if strings.TrimSpace(node.Data) != "" {
				return false
			}
		default:
			return false
		}
	}

	return true
}
