package display

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/rht/internal/extract"
)

// TreeFormatter formats declaration trees for display
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	Format    string // "text" or "compact"
	ShowLines bool   // Show line:column after each declaration
	ShowKinds bool   // Show the cursor kind before each name
	MaxDepth  int    // Maximum depth to display, 0 = unlimited
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	return &TreeFormatter{options: options}
}

// Format formats the declarations of one file
func (tf *TreeFormatter) Format(path string, roots []*extract.Node) string {
	switch tf.options.Format {
	case "compact":
		return tf.formatCompact(path, roots)
	default:
		return tf.formatText(path, roots)
	}
}

// formatText draws the file as the root with its declarations below it.
func (tf *TreeFormatter) formatText(path string, roots []*extract.Node) string {
	var sb strings.Builder

	total := 0
	for _, n := range roots {
		total += n.Count()
	}
	sb.WriteString(fmt.Sprintf("%s (%d declarations)\n", path, total))

	for i, n := range roots {
		tf.formatNode(&sb, n, "", i == len(roots)-1, 1)
	}
	return sb.String()
}

// formatNode recursively formats a tree node
func (tf *TreeFormatter) formatNode(sb *strings.Builder, node *extract.Node, prefix string, isLast bool, depth int) {
	if tf.options.MaxDepth > 0 && depth > tf.options.MaxDepth {
		return
	}

	branch := "├─→ "
	if isLast {
		branch = "└─→ "
	}

	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(tf.label(node))
	sb.WriteString("\n")

	childPrefix := prefix + "│ "
	if isLast {
		childPrefix = prefix + "  "
	}
	for i, child := range node.Children {
		tf.formatNode(sb, child, childPrefix, i == len(node.Children)-1, depth+1)
	}
}

func (tf *TreeFormatter) label(node *extract.Node) string {
	label := node.Name
	if tf.options.ShowKinds {
		label = node.Kind.String() + " " + label
	}
	if tf.options.ShowLines && node.Location.IsValid() {
		label += fmt.Sprintf(" [%d:%d]", node.Location.Line, node.Location.Column)
	}
	return label
}

// formatCompact renders one line per file: "path: a{b c{d}} e".
func (tf *TreeFormatter) formatCompact(path string, roots []*extract.Node) string {
	var sb strings.Builder
	sb.WriteString(path)
	sb.WriteString(":")
	for _, n := range roots {
		sb.WriteString(" ")
		tf.collectCompactParts(&sb, n, 1)
	}
	sb.WriteString("\n")
	return sb.String()
}

// collectCompactParts writes a node by its last name segment, children in
// braces.
func (tf *TreeFormatter) collectCompactParts(sb *strings.Builder, node *extract.Node, depth int) {
	name := node.Name
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	sb.WriteString(name)

	if len(node.Children) == 0 || (tf.options.MaxDepth > 0 && depth >= tf.options.MaxDepth) {
		return
	}
	sb.WriteString("{")
	for i, child := range node.Children {
		if i > 0 {
			sb.WriteString(" ")
		}
		tf.collectCompactParts(sb, child, depth+1)
	}
	sb.WriteString("}")
}
