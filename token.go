package latexmd

// Text is a run of literal characters.
type Text string

// Command is a control word, the name is stored without the leading backslash.
type Command string

type MathKind int

const (
	Inline MathKind = iota
	Display
)

type Edge int

const (
	Open Edge = iota
	Close
)

// MathBoundary opens or closes a math span. $, \( \) are inline, $$, \[ \] are display.
type MathBoundary struct {
	Kind MathKind
	Edge Edge
}

type CommentStart struct {
}

type EnvironmentBegin struct {
	Name string
}

type EnvironmentEnd struct {
	Name string
}

type BraceOpen struct {
}

type BraceClose struct {
}
