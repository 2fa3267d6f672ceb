package host

import "strings"

// Node is the renderable output of an app: a small component tree that the
// compositor wraps in window chrome and the front-ends draw.
type Node struct {
	Kind     string                 `json:"type"`
	Text     string                 `json:"text,omitempty"`
	Props    map[string]interface{} `json:"props,omitempty"`
	Children []Node                 `json:"children,omitempty"`

	// Action is the message delivered when the node is activated.
	Action Msg `json:"-"`
}

// Text builds a text node.
func Text(s string) Node {
	return Node{Kind: "text", Text: s}
}

// Mono builds a monospace text node.
func Mono(s string) Node {
	return Node{Kind: "text", Text: s, Props: map[string]interface{}{"font": "monospace"}}
}

// Column stacks children vertically.
func Column(children ...Node) Node {
	return Node{Kind: "column", Children: children}
}

// Row lays children out horizontally.
func Row(children ...Node) Node {
	return Node{Kind: "row", Children: children}
}

// Button builds a pressable label.
func Button(label string, action Msg) Node {
	return Node{Kind: "button", Text: label, Action: action}
}

// WithProp returns a copy of n with key set.
func (n Node) WithProp(key string, value interface{}) Node {
	props := make(map[string]interface{}, len(n.Props)+1)
	for k, v := range n.Props {
		props[k] = v
	}
	props[key] = value
	n.Props = props
	return n
}

// MapActions returns a copy of n with every non-nil action passed through f.
func MapActions(n Node, f func(Msg) Msg) Node {
	if n.Action != nil {
		n.Action = f(n.Action)
	}
	if len(n.Children) > 0 {
		children := make([]Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = MapActions(c, f)
		}
		n.Children = children
	}
	return n
}

// Walk visits n and its descendants depth-first. Returning false stops the walk.
func Walk(n Node, visit func(Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.Children {
		if !Walk(c, visit) {
			return false
		}
	}
	return true
}

// PlainText flattens a node tree into lines of text. Rows are joined with a
// space, everything else with a newline.
func PlainText(n Node) string {
	var sb strings.Builder
	writePlain(&sb, n)
	return strings.TrimRight(sb.String(), "\n")
}

func writePlain(sb *strings.Builder, n Node) {
	switch n.Kind {
	case "row":
		parts := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			parts = append(parts, PlainText(c))
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteByte('\n')
	case "button":
		sb.WriteString("[" + n.Text + "]")
		sb.WriteByte('\n')
	default:
		if n.Text != "" {
			sb.WriteString(n.Text)
			sb.WriteByte('\n')
		}
		for _, c := range n.Children {
			writePlain(sb, c)
		}
	}
}
