package latexmd

// Handling says what happens to the argument of a command or the body of an
// environment.
type Handling int

const (
	// Recursive content is parsed again, so it may carry nested markup.
	Recursive Handling = iota
	// Verbatim content is taken as written, it is never parsed or restyled.
	Verbatim
	// Items content is split at \item, each item is parsed recursively.
	Items
	// Transparent environments are dropped, their content stays in place.
	Transparent
)

// Argument is passed to rule constructors.
type Argument struct {
	Raw      string  // source between the braces, or the environment body
	Option   string  // optional [...] parameter, if present
	Children []*Node // parsed argument for Recursive rules, items for Items rules
}

// Rule describes a command, eg. \textbf. Build may return nil for commands which
// produce nothing (eg. \usepackage).
type Rule struct {
	Name     string
	Args     int  // 0 or 1 obligatory {...} argument
	Options  bool // accepts optional [...] parameter before the argument
	Handling Handling
	Build    func(Argument) *Node
}

// EnvironmentRule describes a \begin{name}...\end{name} pair.
type EnvironmentRule struct {
	Name     string
	Handling Handling
	Build    func(Argument) *Node
}

// Rules maps command and environment names to their behaviour. Adding a new
// command means adding one entry, the parser does not change.
type Rules struct {
	commands     map[string]Rule
	environments map[string]EnvironmentRule
}

// DefaultRules returns the recognized LaTeX subset.
func DefaultRules() Rules {
	return Rules{}.With(
		Rule{Name: "textbf", Args: 1, Handling: Recursive, Build: styled(Bold)},
		Rule{Name: "textit", Args: 1, Handling: Recursive, Build: styled(Italic)},
		Rule{Name: "emph", Args: 1, Handling: Recursive, Build: styled(Italic)},
		Rule{Name: "documentclass", Args: 1, Options: true, Handling: Verbatim, Build: drop},
		Rule{Name: "usepackage", Args: 1, Options: true, Handling: Verbatim, Build: drop},
	).WithEnvironments(
		EnvironmentRule{Name: "document", Handling: Transparent},
		EnvironmentRule{Name: "equation", Handling: Verbatim, Build: displayMath},
		EnvironmentRule{Name: "equation*", Handling: Verbatim, Build: displayMath},
		EnvironmentRule{Name: "enumerate", Handling: Items, Build: list(Enumerate)},
		EnvironmentRule{Name: "itemize", Handling: Items, Build: list(Itemize)},
	)
}

// With returns a copy of the rules with given command rules added or replaced.
func (r Rules) With(rules ...Rule) Rules {
	commands := make(map[string]Rule, len(r.commands)+len(rules))
	for name, rule := range r.commands {
		commands[name] = rule
	}

	for _, rule := range rules {
		commands[rule.Name] = rule
	}

	return Rules{commands: commands, environments: r.environments}
}

// WithEnvironments returns a copy of the rules with given environment rules added or replaced.
func (r Rules) WithEnvironments(rules ...EnvironmentRule) Rules {
	environments := make(map[string]EnvironmentRule, len(r.environments)+len(rules))
	for name, rule := range r.environments {
		environments[name] = rule
	}

	for _, rule := range rules {
		environments[rule.Name] = rule
	}

	return Rules{commands: r.commands, environments: environments}
}

func (r Rules) Command(name string) (Rule, bool) {
	rule, ok := r.commands[name]
	return rule, ok
}

func (r Rules) Environment(name string) (EnvironmentRule, bool) {
	rule, ok := r.environments[name]
	return rule, ok
}

func styled(style Style) func(Argument) *Node {
	return func(a Argument) *Node {
		return &Node{Kind: StyledNode, Style: style, Children: a.Children}
	}
}

func list(style Style) func(Argument) *Node {
	return func(a Argument) *Node {
		return &Node{Kind: ListNode, Style: style, Children: a.Children}
	}
}

func displayMath(a Argument) *Node {
	return &Node{Kind: MathNode, Style: DisplayMath, Data: a.Raw}
}

func drop(Argument) *Node {
	return nil
}
