package latexmd

type Kind int

const (
	TextNode Kind = iota
	StyledNode
	MathNode
	ListNode
	ItemNode
	CommentNode
	PassthroughNode
)

type Style string

const (
	Bold        Style = "bold"
	Italic      Style = "italic"
	InlineMath  Style = "$"
	DisplayMath Style = "$$"
	Enumerate   Style = "enumerate"
	Itemize     Style = "itemize"
)

// Node is an element of the parsed document.
//
// Data holds text for TextNode, raw content for MathNode, original source for
// PassthroughNode and the comment body for CommentNode. ItemNode with an
// explicit label keeps its source in Parameters["label"] and the parsed label
// in Label.
type Node struct {
	Kind       Kind
	Style      Style
	Data       string
	Parameters map[string]string
	Label      []*Node
	Children   []*Node
}

func text(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

func passthrough(source string) *Node {
	return &Node{Kind: PassthroughNode, Data: source}
}
