package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
)

// WriteTree writes a textual projection of the node tree, one line per
// node with its id and type. Errored nodes, placeholders, and unrendered
// nodes carry a marker so they stand out in terminal output.
func WriteTree(w io.Writer, root *Node) error {
	if root == nil {
		return fmt.Errorf("node must not be nil")
	}
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedRounded)
	appendNode(lw, root)
	lw.SetOutputMirror(w)
	lw.Render()
	return nil
}

func appendNode(lw list.Writer, node *Node) {
	lw.AppendItem(nodeLabel(node))
	for _, child := range node.Children {
		lw.Indent()
		appendNode(lw, child)
		lw.UnIndent()
	}
}

func nodeLabel(node *Node) string {
	label := fmt.Sprintf("%s (%s)", node.ID, node.Type)
	switch {
	case node.State == StateErrored:
		label += " [errored]"
	case node.State == StateUnrendered:
		label += " [unrendered]"
	case node.Element != nil && node.Element.Component == ComponentPlaceholder:
		label += " [placeholder]"
	}
	return label
}
